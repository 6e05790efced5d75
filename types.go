package openhrv

import (
	"fmt"
	"strings"
)

// DataType identifies the kind of signal stored in the submitted file.
type DataType string

const (
	DataTypePPG DataType = "PPG"
	DataTypeECG DataType = "ECG"
	DataTypeRRS DataType = "RRS"
)

// DataTypes lists every accepted data type in display order.
var DataTypes = []DataType{DataTypePPG, DataTypeECG, DataTypeRRS}

func (d DataType) IsValid() bool {
	switch d {
	case DataTypePPG, DataTypeECG, DataTypeRRS:
		return true
	default:
		return false
	}
}

func (d DataType) String() string {
	return string(d)
}

// ParseDataType converts s into a DataType. Matching is exact: "ecg" is rejected.
func ParseDataType(s string) (DataType, error) {
	d := DataType(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidDataType, s)
	}
	return d, nil
}

// DataTypeNames returns the accepted data types joined by sep.
func DataTypeNames(sep string) string {
	names := make([]string, len(DataTypes))
	for i, d := range DataTypes {
		names[i] = string(d)
	}
	return strings.Join(names, sep)
}

// Mode selects which remote endpoint handles a submission.
type Mode string

const (
	ModePlain     Mode = "plain"
	ModeSegmented Mode = "segmented"
)

// Params describes a single HRV submission.
// SegmentLength and Overlap are only used when Segmented is set.
type Params struct {
	FilePath      string   `validate:"required"`
	SamplingRate  int      `validate:"gt=0"`
	DataType      DataType `validate:"oneof=PPG ECG RRS"`
	Segmented     bool
	SegmentLength int
	Overlap       *float64
}

// Mode reports the endpoint mode implied by p.
func (p Params) Mode() Mode {
	if p.Segmented {
		return ModeSegmented
	}
	return ModePlain
}
