package openhrv

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Struct-level tags reported by validateParams.
const (
	tagExtension         = "extension"
	tagRequiredSegmented = "required_segmented"
	tagOverlapRange      = "overlap_range"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateParams, Params{})
	return v
}

// validateParams checks the rules that span more than one field.
func validateParams(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(Params)
	if !ok {
		return
	}

	if p.FilePath != "" && !HasAllowedExtension(p.FilePath) {
		sl.ReportError(p.FilePath, "FilePath", "FilePath", tagExtension, "")
	}

	if !p.Segmented {
		return
	}

	if p.SegmentLength <= 0 {
		sl.ReportError(p.SegmentLength, "SegmentLength", "SegmentLength", tagRequiredSegmented, "")
	}

	switch {
	case p.Overlap == nil:
		sl.ReportError(p.Overlap, "Overlap", "Overlap", tagRequiredSegmented, "")
	case !(*p.Overlap >= 0 && *p.Overlap <= 1): // also rejects NaN
		sl.ReportError(*p.Overlap, "Overlap", "Overlap", tagOverlapRange, "")
	}
}

// Validate checks p and returns nil or an error wrapping ErrInvalidParams.
// When several rules fail, the errors are joined so each one is reported.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate params: %w", err)
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError(p, fe))
	}
	return errors.Join(errs...)
}

// fieldError maps a validator failure onto the package's sentinel errors.
func fieldError(p Params, fe validator.FieldError) error {
	switch fe.StructField() {
	case "FilePath":
		if fe.Tag() == tagExtension {
			return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(p.FilePath))
		}
		return ErrFileRequired
	case "SamplingRate":
		return fmt.Errorf("%w: got %d", ErrInvalidSamplingRate, p.SamplingRate)
	case "DataType":
		return fmt.Errorf("%w: got %q", ErrInvalidDataType, p.DataType)
	case "SegmentLength":
		return ErrSegmentLengthRequired
	case "Overlap":
		if fe.Tag() == tagOverlapRange {
			return fmt.Errorf("%w: got %s", ErrOverlapOutOfRange, FormatOverlap(*p.Overlap))
		}
		return ErrOverlapRequired
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidParams, fe.Field(), fe.Tag())
	}
}
