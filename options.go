package drda

import (
	"crypto/tls"
	"os"
	"strconv"
	"time"
)

// Default connect parameters. Each server family listens on its own
// well-known port; the dialect picks one unless SetPort overrides it.
const (
	DefaultPortDerby      = 1527
	DefaultPortDb2        = 50000
	DefaultConnectTimeout = 30 * time.Second
)

// NewConnectOption builds a *ConnectOption for host/database. The dialect
// starts as Derby; SetCredentials switches it to Db2 (no user means
// Derby, a user means Db2), and SetDBType overrides either way.
func NewConnectOption(host, database string) *ConnectOption {
	return &ConnectOption{
		host:           host,
		database:       database,
		port:           DefaultPortDerby,
		dbType:         DBTypeDerby,
		connectTimeout: DefaultConnectTimeout,
	}
}

// ConnectOption configures a Session before Connect. Its fields are
// unexported; set them via the chainable SetX methods.
type ConnectOption struct {
	host     string
	port     int
	database string
	user     string
	password string
	dbType   dbType

	portSet bool

	useTLS     bool
	tlsConfig  *tls.Config
	sslCACerts string

	connectTimeout time.Duration
}

// SetPort overrides the dialect's default port.
func (o *ConnectOption) SetPort(port int) *ConnectOption {
	if port > 0 {
		o.port = port
		o.portSet = true
	}
	return o
}

// SetCredentials sets the user/password and switches the dialect to Db2;
// Derby connections authenticate as "APP" without a password.
func (o *ConnectOption) SetCredentials(user, password string) *ConnectOption {
	o.user = user
	o.password = password
	return o.SetDBType(DBTypeDb2)
}

// SetDBType overrides the inferred dialect explicitly, moving the port to
// the new dialect's well-known default unless SetPort already pinned it.
func (o *ConnectOption) SetDBType(t dbType) *ConnectOption {
	o.dbType = t
	if !o.portSet {
		if t == DBTypeDb2 {
			o.port = DefaultPortDb2
		} else {
			o.port = DefaultPortDerby
		}
	}
	return o
}

// SetTLS enables TLS on the transport with the given config (nil for
// tls.Config's zero-value defaults).
func (o *ConnectOption) SetTLS(tc *tls.Config) *ConnectOption {
	o.useTLS = true
	if tc != nil {
		o.tlsConfig = tc
	}
	return o
}

// SetSSLCACerts sets the path to a PEM-encoded CA bundle used to verify
// the server's certificate. Connect loads it into a fresh x509.CertPool
// and installs that as tlsConfig.RootCAs, so it composes with a
// caller-supplied SetTLS config rather than replacing it.
func (o *ConnectOption) SetSSLCACerts(path string) *ConnectOption {
	o.sslCACerts = path
	o.useTLS = true
	return o
}

// SetConnectTimeout overrides DefaultConnectTimeout.
func (o *ConnectOption) SetConnectTimeout(timeout time.Duration) *ConnectOption {
	if timeout > 0 {
		o.connectTimeout = timeout
	}
	return o
}

// ConfigFromEnv builds a *ConnectOption from the DB2_HOST / DB2_DATABASE /
// DB2_USER / DB2_PASSWORD / DB2_PORT / DB2_SSL_CA_CERTS environment
// variables.
func ConfigFromEnv() *ConnectOption {
	o := NewConnectOption(os.Getenv("DB2_HOST"), os.Getenv("DB2_DATABASE"))
	if port := os.Getenv("DB2_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			o.SetPort(p)
		}
	}
	if user := os.Getenv("DB2_USER"); user != "" {
		o.SetCredentials(user, os.Getenv("DB2_PASSWORD"))
	}
	if caCerts := os.Getenv("DB2_SSL_CA_CERTS"); caCerts != "" {
		o.SetTLS(&tls.Config{ServerName: os.Getenv("DB2_HOST")})
		o.SetSSLCACerts(caCerts)
	}
	return o
}
