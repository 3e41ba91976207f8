// Package monitor streams the instruction trace of an emulator run to a
// websocket client, one text message per trace write.
package monitor

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/ezrec/z80lite/emulator"
	"github.com/ezrec/z80lite/translate"
)

var f = translate.From

var ErrClientGone = errors.New(f("client gone"))

// PATH is the websocket endpoint served by ListenAndServe.
const PATH = "/z80"

// Setup creates a freshly loaded emulator for each client.
type Setup func() (emu *emulator.Emulator, err error)

// Server runs one emulator per websocket client.
type Server struct {
	Verbose  bool               // If set, logs client connections.
	Setup    Setup              // Emulator factory.
	Upgrader websocket.Upgrader // Upgrader options.
}

var _ http.Handler = (*Server)(nil)

// wsWriter sends each write as a text message. Once a send fails, all
// further writes fail.
type wsWriter struct {
	conn *websocket.Conn
	err  error
}

func (ws *wsWriter) Write(p []byte) (n int, err error) {
	if ws.err != nil {
		err = ws.err
		return
	}

	ws.err = ws.conn.WriteMessage(websocket.TextMessage, p)
	if ws.err != nil {
		err = ws.err
		return
	}

	n = len(p)
	return
}

// closeWith sends a close frame.
func (srv *Server) closeWith(conn *websocket.Conn, code int, text string) {
	err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	if err != nil && srv.Verbose {
		log.Printf("monitor: close: %v", err)
	}
}

// watch reads from the client until the connection fails, then marks the
// client as gone. Control frames are handled by the read.
func watch(conn *websocket.Conn, gone *atomic.Bool) {
	for {
		_, _, err := conn.NextReader()
		if err != nil {
			gone.Store(true)
			return
		}
	}
}

// ServeHTTP upgrades the connection and runs the emulator to the halt
// sentinel, streaming the trace. Runtime faults are sent as a final
// message before the close frame. The run stops once the client is gone.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if srv.Verbose {
		log.Printf("monitor: client %s", r.RemoteAddr)
	}

	conn, err := srv.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: upgrade: %v", err)
		return
	}
	defer conn.Close()

	emu, err := srv.Setup()
	if err != nil {
		srv.closeWith(conn, websocket.CloseInternalServerErr, err.Error())
		return
	}

	var gone atomic.Bool
	go watch(conn, &gone)

	writer := &wsWriter{conn: conn}
	emu.Cpu.Output = writer
	emu.Trace = true
	emu.Stop = func() error {
		if writer.err != nil {
			return writer.err
		}
		if gone.Load() {
			return ErrClientGone
		}
		return nil
	}

	err = emu.Run()
	if writer.err != nil || gone.Load() {
		if srv.Verbose {
			log.Printf("monitor: client %s: %v", r.RemoteAddr, err)
		}
		return
	}
	if err != nil {
		fmt.Fprint(writer, f("! %v\n", err))
	}

	srv.closeWith(conn, websocket.CloseNormalClosure, "")

	if srv.Verbose {
		log.Printf("monitor: client %s: %d ticks", r.RemoteAddr, emu.Ticks())
	}
}

// ListenAndServe serves the monitor at PATH on addr.
func ListenAndServe(addr string, setup Setup) error {
	mux := http.NewServeMux()
	mux.Handle(PATH, &Server{Verbose: true, Setup: setup})

	log.Printf("monitor: serving ws://%s%s", addr, PATH)

	return http.ListenAndServe(addr, mux)
}
