package openhrv

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is wrapped by every parameter validation error.
var ErrInvalidParams = errors.New("invalid parameters")

var (
	// ErrFileRequired is returned when no signal file path is given.
	ErrFileRequired = fmt.Errorf("%w: file is required", ErrInvalidParams)
	// ErrInvalidExtension is returned when the file is not .bin, .dat or .csv.
	ErrInvalidExtension = fmt.Errorf("%w: file extension must be one of .bin, .dat, .csv", ErrInvalidParams)
	// ErrInvalidSamplingRate is returned when the sampling rate is not a positive integer.
	ErrInvalidSamplingRate = fmt.Errorf("%w: sampling rate must be a positive integer", ErrInvalidParams)
	// ErrInvalidDataType is returned for data types outside PPG, ECG and RRS.
	ErrInvalidDataType = fmt.Errorf("%w: data type must be one of PPG, ECG, RRS", ErrInvalidParams)
	// ErrSegmentLengthRequired is returned when segmentation is requested without a positive segment length.
	ErrSegmentLengthRequired = fmt.Errorf("%w: segment length must be a positive number of seconds when segmenting", ErrInvalidParams)
	// ErrOverlapRequired is returned when segmentation is requested without an overlap.
	ErrOverlapRequired = fmt.Errorf("%w: overlap is required when segmenting", ErrInvalidParams)
	// ErrOverlapOutOfRange is returned when the overlap is outside [0, 1].
	ErrOverlapOutOfRange = fmt.Errorf("%w: overlap must be between 0 and 1", ErrInvalidParams)
)
