package worktime

import (
	"testing"

	"github.com/matzehuels/worktime/pkg/errors"
)

func TestParseAdjustment(t *testing.T) {
	modes := []string{"w", "p", "n", "s"}

	tests := []struct {
		arg     string
		want    AdjustmentSpec
		wantErr bool
	}{
		{arg: "p+20", want: AdjustmentSpec{Mode: "p", Minutes: 20}},
		{arg: "w-5", want: AdjustmentSpec{Mode: "w", Minutes: -5}},
		{arg: "n+100", want: AdjustmentSpec{Mode: "n", Minutes: 100}},
		{arg: "s+0", want: AdjustmentSpec{Mode: "s", Minutes: 0}},
		{arg: "x+5", wantErr: true},
		{arg: "p20", wantErr: true},
		{arg: "p+", wantErr: true},
		{arg: "+20", wantErr: true},
		{arg: "p+2.5", wantErr: true},
		{arg: "p+99999999999999999999", wantErr: true},
		{arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseAdjustment(tt.arg, modes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAdjustment(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidAdjustment) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidAdjustment)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseAdjustment(%q) = %+v, want %+v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParseAdjustmentsStopsAtFirstError(t *testing.T) {
	_, err := ParseAdjustments([]string{"p+20", "oops", "w-5"}, []string{"w", "p"})
	if err == nil {
		t.Fatal("ParseAdjustments() = nil error, want error")
	}
}

func TestIsAdjustment(t *testing.T) {
	if !IsAdjustment("p+20") {
		t.Error("IsAdjustment(p+20) = false")
	}
	if IsAdjustment("status") {
		t.Error("IsAdjustment(status) = true")
	}
}
