package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"
	"github.com/tliron/commonlog"
)

type Options struct {
	// port on 127.0.0.1, 0 serves stdio
	WebSocket int
	// log every message
	Debug  bool
	Config ClientConfiguration
}

func StartServer(opts Options) (err error) {
	if err = Setup(opts.Config); err != nil {
		return
	}

	defer Teardown()

	handler := CreateRequestHandler()

	if opts.WebSocket != 0 {
		return serveWebSocket(fmt.Sprintf("127.0.0.1:%d", opts.WebSocket), handler, opts.Debug)
	}

	stream := &ReadWriteCloser{
		reader: os.Stdin,
		writer: os.Stdout,
	}

	log.Info("serving stdio")

	conn := NewConn(
		context.Background(),
		jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}),
		handler,
		opts.Debug,
	)

	<-conn.DisconnectNotify()

	return
}

func NewConn(ctx context.Context, stream jsonrpc2.ObjectStream, handler *RequestHandler, debug bool) *jsonrpc2.Conn {
	opts := []jsonrpc2.ConnOpt{
		jsonrpc2.SetLogger(&rpcLogger{log}),
	}

	if debug {
		opts = append(opts, jsonrpc2.LogMessages(&rpcLogger{commonlog.GetLogger("tjs-postfix.rpc")}))
	}

	return jsonrpc2.NewConn(ctx, stream, handler.Conn(), opts...)
}

func serveWebSocket(address string, handler *RequestHandler, debug bool) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()

	var count atomic.Int32

	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		socket, err := upgrader.Upgrade(writer, request, nil)

		if err != nil {
			log.Infof("error upgrading HTTP to WebSocket: %s", err)
			http.Error(writer, fmt.Sprintf("could not upgrade to WebSocket: %s", err), http.StatusBadRequest)
			return
		}

		defer socket.Close()

		id := count.Add(1)

		log.Infof("received incoming WebSocket connection #%d", id)

		conn := NewConn(context.Background(), wsjsonrpc2.NewObjectStream(socket), handler, debug)
		<-conn.DisconnectNotify()

		log.Infof("WebSocket connection #%d closed", id)
	})

	server := http.Server{
		Addr:    address,
		Handler: mux,
	}

	log.Infof("listening for WebSocket connections on %s", address)

	err := server.ListenAndServe()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return fmt.Errorf("WebSocket: %w", err)
}

type ReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (r *ReadWriteCloser) Read(b []byte) (int, error) {
	return r.reader.Read(b)
}

func (r *ReadWriteCloser) Write(b []byte) (int, error) {
	return r.writer.Write(b)
}

func (r *ReadWriteCloser) Close() error {
	return errors.Join(r.reader.Close(), r.writer.Close())
}

// jsonrpc2.Logger over commonlog
type rpcLogger struct {
	log commonlog.Logger
}

func (l *rpcLogger) Printf(format string, v ...any) {
	l.log.Debugf(strings.TrimSuffix(format, "\n"), v...)
}
