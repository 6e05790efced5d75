// Package clientcli provides a client for submitting signal files to an HRV
// (heart-rate-variability) web service.
//
// A single Client serves both the plain and the segmented calculation
// endpoints; the endpoint is chosen from openhrv.Params.Segmented. The
// request is a multipart/form-data POST carrying the sampling rate, data type,
// optional segment length and overlap, and the file itself. The response body
// is returned as raw bytes.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Calculate(ctx, openhrv.Params{
//		FilePath:     "recording.csv",
//		SamplingRate: 250,
//		DataType:     openhrv.DataTypeECG,
//	})
//	if err != nil {
//		// errors.Is(err, clientcli.ErrRequestFailed) for transport and non-2xx failures
//		log.Fatal(err)
//	}
//	os.Stdout.Write(result.Body)
//
// # Profile Configuration
//
// Named endpoint profiles are stored in ~/.openhrv/profiles.yaml:
//
//	file, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	profile, err := file.GetProfile("staging")
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatResult(os.Stdout, result)
package clientcli
