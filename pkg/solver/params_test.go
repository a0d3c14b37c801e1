package solver

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/rules"
)

func TestParamsValidateAndSetDefaults(t *testing.T) {
	p := Params{FloorWidth: 600, FloorHeight: 400}
	if err := p.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if p.DoorSlots != DefaultDoorSlots {
		t.Errorf("DoorSlots = %d, want %d", p.DoorSlots, DefaultDoorSlots)
	}
	if p.MinSharedWall != DefaultMinSharedWall {
		t.Errorf("MinSharedWall = %d, want %d", p.MinSharedWall, DefaultMinSharedWall)
	}
	if p.DefaultSeparation != DefaultSeparation {
		t.Errorf("DefaultSeparation = %d, want %d", p.DefaultSeparation, DefaultSeparation)
	}
	if p.TimeLimit != DefaultTimeLimit {
		t.Errorf("TimeLimit = %v, want %v", p.TimeLimit, DefaultTimeLimit)
	}
	if p.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestParamsRejectBadPlate(t *testing.T) {
	for _, p := range []Params{
		{FloorWidth: 0, FloorHeight: 100},
		{FloorWidth: 100, FloorHeight: -5},
	} {
		err := p.ValidateAndSetDefaults()
		if err == nil {
			t.Errorf("plate %dx%d accepted", p.FloorWidth, p.FloorHeight)
			continue
		}
		if errors.GetCode(err) != errors.ErrCodeConfigBounds {
			t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeConfigBounds)
		}
	}
}

func TestExtentBoundsOrientation(t *testing.T) {
	// Plate longer in x: the long reference edge runs along x.
	params := Params{FloorWidth: 800, FloorHeight: 400, Logger: log.New(io.Discard)}
	if err := params.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	b := newBuilder(nil, params)

	size := rules.SizeRule{Min: &rules.Dims{Width: 60, Length: 300}}

	tests := []struct {
		name         string
		orientation  *rules.Orientation
		wantW, wantH int
	}{
		{"no orientation keeps length on y", nil, 60, 300},
		{"parallel to long edge puts length on x",
			&rules.Orientation{Relation: rules.RelationParallel, Reference: rules.EdgeLong}, 300, 60},
		{"perpendicular to long edge keeps length on y",
			&rules.Orientation{Relation: rules.RelationPerpendicular, Reference: rules.EdgeLong}, 60, 300},
		{"parallel to short edge keeps length on y",
			&rules.Orientation{Relation: rules.RelationParallel, Reference: rules.EdgeShort}, 60, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &rules.RoomTypeRule{Type: "clinicalCorridor", Size: size, Orientation: tt.orientation}
			wMin, hMin, _, _ := b.extentBounds(rec)
			if wMin != tt.wantW || hMin != tt.wantH {
				t.Errorf("extent min = %dx%d, want %dx%d", wMin, hMin, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestExtentBoundsUnresolvedSizeIsSkipped(t *testing.T) {
	params := Params{FloorWidth: 800, FloorHeight: 400, Logger: log.New(io.Discard)}
	if err := params.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	b := newBuilder(nil, params)

	wMin, hMin, wMax, hMax := b.extentBounds(&rules.RoomTypeRule{Type: "mechanical"})
	if wMin != 1 || hMin != 1 || wMax != 800 || hMax != 400 {
		t.Errorf("bounds = [%d,%d]x[%d,%d], want full-plate domain", wMin, wMax, hMin, hMax)
	}
}
