package construct

import (
	"net"

	"github.com/corvid-web/corvid/config"
	"github.com/corvid-web/corvid/http"
	"github.com/corvid-web/corvid/transport"
)

// Request assembles a request head bound to a fresh response builder. The body is
// armed with an empty source until a transport installs a real one.
func Request(cfg *config.Config, remote net.Addr) *http.Request {
	return http.NewRequest(cfg, http.NewResponse(), remote)
}

// Client wraps an accepted connection into a transport client with a read buffer
// sized by the config.
func Client(cfg config.NET, conn net.Conn) transport.Client {
	readBuff := make([]byte, cfg.ReadBufferSize)

	return transport.NewClient(conn, cfg.HeaderReadTimeout, readBuff)
}
