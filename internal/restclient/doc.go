// Package restclient provides a small REST client bound to one base URL.
//
// Every call funnels through [Client.Request], which resolves the target as
// base URL plus path, logs the outgoing request in full and then hands it to
// the verb-specific [Session] method:
//
//	client := restclient.New("http://127.0.0.1:30176/jibu",
//		restclient.WithLogger(logger))
//	resp, err := client.Post(ctx, "/user/add", nil, user, nil)
//	if err != nil {
//		return err
//	}
//	var saved map[string]any
//	err = restclient.DecodeJSON(resp, &saved)
//
// # Request options
//
// Headers, query parameters, file attachments, cookies and a per-call timeout
// are carried by [Options]. Every field is optional.
//
// # Bodies
//
// [Client.Post] hands a structured JSON body to the session untouched and the
// session encodes it. [Client.Put] and [Client.Patch] serialize a structured
// body themselves and send the result as the raw body, replacing any raw body
// passed alongside it.
//
// # Errors
//
// Transport failures are returned unchanged. The package adds
// [UnsupportedMethodError], [UnreachableError], [StatusError] and
// [ParseError], each matching a sentinel through errors.Is.
package restclient
