// Package httpmsg is a minimal HTTP/1.1 client and file server built on
// the wire package.
//
// The client sends one GET request per connection and assembles the
// response, whatever its body framing:
//
//	client := httpmsg.NewClient(httpmsg.ClientConfig{})
//	res, err := client.Get(ctx, "http://localhost/index.html", "8080")
//
// The server reads one request per connection, answers it from a Handler
// (FileHandler by default) and closes the connection. A Gate caps the
// number of connections handled at once; connections beyond that wait in
// the listen backlog:
//
//	server, err := httpmsg.NewServer(httpmsg.ServerConfig{Workers: 10})
//	err = server.ListenAndServe(ctx, ":8080")
package httpmsg
