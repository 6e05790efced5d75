// Package openhrv holds the request model for submitting physiological
// signal recordings to a remote HRV (heart-rate-variability) service.
//
// The package does no signal processing. It describes what a submission is
// (a file, its sampling rate and data type, and optional segmentation
// parameters) and validates it before the clientcli package turns it into a
// multipart upload.
//
// # Data Types
//
//   - DataTypePPG: photoplethysmogram, an optical pulse signal
//   - DataTypeECG: electrocardiogram, an electrical cardiac signal
//   - DataTypeRRS: RR-interval series, the time between successive beats
//
// # Modes
//
// A submission runs in one of two modes, chosen by Params.Segmented:
//
//   - ModePlain: HRV is computed over the whole recording
//   - ModeSegmented: the recording is split into overlapping windows of
//     SegmentLength seconds and HRV is computed per window
//
// # Example Usage
//
//	overlap := 0.5
//	p := openhrv.Params{
//	    FilePath:      "recording.csv",
//	    SamplingRate:  250,
//	    DataType:      openhrv.DataTypeECG,
//	    Segmented:     true,
//	    SegmentLength: 30,
//	    Overlap:       &overlap,
//	}
//	if err := p.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package openhrv
