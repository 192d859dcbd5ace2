package worktime_test

import (
	"fmt"
	"time"

	"github.com/matzehuels/worktime/pkg/worktime"
)

func ExampleTimeString() {
	fmt.Println(worktime.TimeString(45 * time.Minute))
	fmt.Println(worktime.TimeString(2*time.Hour + 5*time.Minute))
	// Output:
	// 45
	// 2:05
}

func ExampleHumanTime() {
	fmt.Println(worktime.HumanTime(210 * time.Second))
	fmt.Println(worktime.HumanTime(12 * time.Hour))
	// Output:
	// 3.5 minutes
	// 12 hours
}

func ExampleParseAdjustments() {
	specs, err := worktime.ParseAdjustments([]string{"p+20", "w-5"}, []string{"w", "p", "n", "s"})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, s := range specs {
		fmt.Println(s.Mode, s.Minutes)
	}
	// Output:
	// p 20
	// w -5
}
