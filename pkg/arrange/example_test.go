package arrange_test

import (
	"fmt"

	"github.com/matzehuels/worktime/pkg/arrange"
)

func ExampleArrange() {
	// Two 200px labels anchored at 50% and 52% of a 1000px bar.
	boxes := []arrange.Box{
		arrange.NewBox(50, 200, 1000),
		arrange.NewBox(52, 200, 1000),
	}

	res := arrange.Arrange(boxes, 1000)

	fmt.Println(res.Percents())
	fmt.Println("passes:", res.Passes, "converged:", res.Converged)
	// Output:
	// [30.8% 51.3%]
	// passes: 1 converged: true
}

func ExampleArrange_edge() {
	// A label near the right edge is pinned inside the bar.
	res := arrange.Arrange([]arrange.Box{arrange.NewBox(99, 100, 1000)}, 1000)

	fmt.Println(res.Percent(0))
	// Output:
	// 90.0%
}

func ExampleWithMinSpace() {
	boxes := []arrange.Box{
		{Position: 500, Width: 200},
		{Position: 520, Width: 200},
	}

	res := arrange.Arrange(boxes, 1000, arrange.WithMinSpace(15))

	fmt.Printf("%.1f %.1f\n", res.Boxes[0].Left, res.Boxes[1].Left)
	// Output:
	// 302.5 517.5
}
