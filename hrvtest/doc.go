// Package hrvtest runs an in-process stand-in for the remote HRV web service.
//
// The server accepts multipart uploads on the plain and segmented calculation
// routes, records every request it receives and replies with a scripted
// status and body. It is meant for tests of clientcli and the openhrv command.
//
//	srv := hrvtest.New(t)
//	srv.Respond(http.StatusOK, `{"rmssd": 41.7}`)
//
//	client, _ := clientcli.New(&clientcli.Config{Endpoint: srv.URL})
//	result, err := client.Calculate(ctx, params)
//
//	req, _ := srv.LastRequest()
//	// req.Fields["sampling_rate"] == "250"
package hrvtest
