package drda

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// Session is a connected DRDA client. It is not safe for concurrent use
// by multiple goroutines: DRDA is a synchronous request/reply protocol,
// so a Session issues one request and reads its whole response on the
// calling goroutine rather than running reader/writer goroutines
// internally. Independent Sessions may run in parallel.
type Session struct {
	conn net.Conn
	dia  *dialect
	opt  *ConnectOption
	pkg  pkgContext
	corr *correlationTracker

	dhPrivate *big.Int
	secmec    uint16
}

// Connect dials host:port from opt and runs the full DRDA handshake:
// EXCSAT, ACCSEC (renegotiating SECMEC if the server insists on a
// different one), SECCHK+ACCRDB, and, for Db2, the SET CLIENT/SET
// CURRENT LOCALE session-variable exchange.
func Connect(opt *ConnectOption) (*Session, error) {
	if opt.dbType != DBTypeDerby && opt.dbType != DBTypeDb2 {
		return nil, &NotSupportedError{Feature: "dialect " + opt.dbType.String()}
	}
	addr := fmt.Sprintf("%s:%d", opt.host, opt.port)
	dialer := &net.Dialer{Timeout: opt.connectTimeout}

	var conn net.Conn
	var err error
	if opt.useTLS {
		tc := opt.tlsConfig
		if tc == nil {
			tc = &tls.Config{}
		}
		if opt.sslCACerts != "" {
			pem, err := os.ReadFile(opt.sslCACerts)
			if err != nil {
				return nil, &TransportError{Op: "read ssl-ca-certs", Err: err}
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, &TransportError{Op: "read ssl-ca-certs", Err: fmt.Errorf("no certificates found in %s", opt.sslCACerts)}
			}
			tc.RootCAs = pool
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tc)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	_lg.Debugf("connected to %s", addr)

	dia := dialectFor(opt.dbType)
	dbName := padDatabaseName(opt.database)
	corr := &correlationTracker{cur: 1}

	s := &Session{conn: conn, dia: dia, opt: opt, corr: corr}

	if err := s.handshake(dbName); err != nil {
		conn.Close()
		return nil, err
	}

	s.pkg = pkgContext{database: dbName, pkgid: dia.pkgid, pkgcnstkn: dia.pkgcnstkn, pkgsn: dia.pkgsn}

	// Derby rejects the SET CLIENT statements, so the session-variable
	// exchange only runs against Db2.
	if dia.dbType == DBTypeDb2 {
		if err := s.setVariables(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return s, nil
}

func padDatabaseName(name string) string {
	if len(name) >= 18 {
		return name[:18]
	}
	return fmt.Sprintf("%-18s", name)
}

func (s *Session) handshake(dbName string) error {
	secmec := s.dia.defaultSecmec
	var dhPub []byte
	if s.dia.dbType == DBTypeDb2 {
		priv, err := dhGeneratePrivate()
		if err != nil {
			return err
		}
		s.dhPrivate = priv
		dhPub = dhPublic(priv)
	}
	sectknFor := func(mec uint16) []byte {
		if mec == secmecEUSRIDPWD {
			return dhPub
		}
		return nil
	}

	// EXCSAT and ACCSEC go out as one chained batch; the server answers
	// with EXCSATRD chained to ACCSECRD.
	s.corr.cur = 1
	id := s.corr.id(false)
	if err := writeDSS(s.conn, packEXCSAT(s.dia), id, true, false); err != nil {
		return err
	}
	id = s.corr.id(false)
	if err := writeDSS(s.conn, packACCSEC(s.dia, secmec, dbName, sectknFor(secmec)), id, false, false); err != nil {
		return err
	}
	rd, err := parseACCSECRD(s.conn)
	if err != nil {
		return err
	}

	// The correlation counter restarts after ACCSECRD. When the server
	// insists on a different SECMEC, the confirming ACCSEC is chained
	// ahead of SECCHK+ACCRDB in the same batch; no second ACCSECRD is
	// read.
	s.corr.cur = 1
	if rd.SecMec != 0 && rd.SecMec != secmec {
		secmec = rd.SecMec
		id = s.corr.id(false)
		if err := writeDSS(s.conn, packACCSEC(s.dia, secmec, dbName, sectknFor(secmec)), id, true, false); err != nil {
			return err
		}
	}
	s.secmec = secmec

	user, password := s.opt.user, s.opt.password
	if s.dia.dbType == DBTypeDerby {
		user, password = s.dia.defaultUser, s.dia.defaultPass
	}

	var encUser, encPassword []byte
	if secmec == secmecEUSRIDPWD {
		encUser, err = desEncryptSecTkn(rd.SecTkn, s.dhPrivate, s.dia.encodeString(user))
		if err != nil {
			return err
		}
		encPassword, err = desEncryptSecTkn(rd.SecTkn, s.dhPrivate, s.dia.encodeString(password))
		if err != nil {
			return err
		}
	}

	secchkID := s.corr.id(false)
	if err := writeDSS(s.conn, packSECCHK(s.dia, secmec, dbName, user, password, encUser, encPassword), secchkID, true, false); err != nil {
		return err
	}
	accrdbID := s.corr.id(false)
	if err := writeDSS(s.conn, packACCRDB(s.dia, dbName), accrdbID, false, false); err != nil {
		return err
	}
	_, err = readResponse(s.conn, s.dia, pkgContext{}, s.corr)
	return err
}

func (s *Session) setVariables() error {
	hostname, _ := os.Hostname()
	locale := "en_US"

	objs := [][]byte{
		packEXCSATMgrLvLs([][2]uint16{{cpCCSIDMGR, 1208}}),
		packEXCSQLSET(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn),
		packSQLSTT(fmt.Sprintf("SET CLIENT WRKSTNNAME '%s'", hostname)),
		packSQLSTT(fmt.Sprintf("SET CURRENT LOCALE LC_CTYPE='%s'", locale)),
		packRDBCMM(),
	}
	// Only EXCSQLSET and the WRKSTNNAME statement share a correlation id
	// with the object that follows them, so EXCSQLSET and both SET
	// statements carry one id; EXCSAT and RDBCMM each get their own.
	sameCorrID := []bool{false, true, true, false, false}
	s.corr.cur = 1
	for i, obj := range objs {
		last := i == len(objs)-1
		id := s.corr.id(sameCorrID[i])
		if err := writeDSS(s.conn, obj, id, !last, sameCorrID[i]); err != nil {
			return err
		}
	}
	_, err := readResponse(s.conn, s.dia, s.pkg, s.corr)
	return err
}

func paramDescsFromCols(cols []ColumnDescription) []paramDescriptor {
	out := make([]paramDescriptor, len(cols))
	for i, c := range cols {
		out[i] = paramDescriptor{SQLType: c.SQLType, Precision: c.Precision, Scale: c.Scale, Length: c.Length}
	}
	return out
}

// Execute runs a non-SELECT statement. With no args it is sent as an
// immediate statement (EXCSQLIMM); with args it is prepared, described,
// and executed with a SQLDTA parameter block.
func (s *Session) Execute(sql string, args ...any) error {
	if len(args) == 0 {
		s.corr.cur = 1
		id := s.corr.id(true)
		if err := writeDSS(s.conn, packEXCSQLIMM(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), id, true, true); err != nil {
			return err
		}
		sqlID := s.corr.id(false)
		if err := writeDSS(s.conn, packSQLSTT(sql), sqlID, true, false); err != nil {
			return err
		}
		cmID := s.corr.id(false)
		if err := writeDSS(s.conn, packRDBCMM(), cmID, false, false); err != nil {
			return err
		}
		_, err := readResponse(s.conn, s.dia, s.pkg, s.corr)
		return err
	}

	s.corr.cur = 1
	prepID := s.corr.id(true)
	if err := writeDSS(s.conn, packPRPSQLSTT(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), prepID, true, true); err != nil {
		return err
	}
	sqlID := s.corr.id(false)
	if err := writeDSS(s.conn, packSQLSTT(sql), sqlID, true, false); err != nil {
		return err
	}
	dscID := s.corr.id(false)
	if err := writeDSS(s.conn, packDSCSQLSTT(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), dscID, false, false); err != nil {
		return err
	}
	resp, err := readResponse(s.conn, s.dia, s.pkg, s.corr)
	if err != nil {
		return err
	}

	params := paramDescsFromCols(resp.ParamsDescription)
	sqldta, err := packSQLDTA(params, args)
	if err != nil {
		return err
	}

	s.corr.cur = 1
	execID := s.corr.id(true)
	if err := writeDSS(s.conn, packEXCSQLSTT(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), execID, true, true); err != nil {
		return err
	}
	dtaID := s.corr.id(false)
	if err := writeDSS(s.conn, sqldta, dtaID, true, false); err != nil {
		return err
	}
	cmID := s.corr.id(false)
	if err := writeDSS(s.conn, packRDBCMM(), cmID, false, false); err != nil {
		return err
	}
	_, err = readResponse(s.conn, s.dia, s.pkg, s.corr)
	return err
}

// Query runs a SELECT and returns its column descriptions and rows.
// Without args it prepares and opens the cursor in one batch; with args
// it describes the statement first, then opens the cursor with a SQLDTA
// parameter block and commits.
func (s *Session) Query(sql string, args ...any) ([]ColumnDescription, [][]any, error) {
	if len(args) == 0 {
		s.corr.cur = 1
		prepID := s.corr.id(true)
		if err := writeDSS(s.conn, packPRPSQLSTT(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), prepID, true, true); err != nil {
			return nil, nil, err
		}
		sqlID := s.corr.id(false)
		if err := writeDSS(s.conn, packSQLSTT(sql), sqlID, true, false); err != nil {
			return nil, nil, err
		}
		openID := s.corr.id(false)
		if err := writeDSS(s.conn, packOPNQRY(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), openID, false, false); err != nil {
			return nil, nil, err
		}
		resp, err := readResponse(s.conn, s.dia, s.pkg, s.corr)
		if err != nil {
			return resp.Description, resp.Rows, err
		}
		return resp.Description, resp.Rows, nil
	}

	s.corr.cur = 1
	prepID := s.corr.id(true)
	if err := writeDSS(s.conn, packPRPSQLSTT(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), prepID, true, true); err != nil {
		return nil, nil, err
	}
	sqlID := s.corr.id(false)
	if err := writeDSS(s.conn, packSQLSTT(sql), sqlID, true, false); err != nil {
		return nil, nil, err
	}
	dscID := s.corr.id(false)
	if err := writeDSS(s.conn, packDSCSQLSTT(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), dscID, false, false); err != nil {
		return nil, nil, err
	}
	prepResp, err := readResponse(s.conn, s.dia, s.pkg, s.corr)
	if err != nil {
		return nil, nil, err
	}

	params := paramDescsFromCols(prepResp.ParamsDescription)
	sqldta, err := packSQLDTA(params, args)
	if err != nil {
		return nil, nil, err
	}

	s.corr.cur = 1
	openID := s.corr.id(true)
	if err := writeDSS(s.conn, packOPNQRYWithParams(s.pkg.database, s.pkg.pkgid, s.pkg.pkgcnstkn, s.pkg.pkgsn), openID, true, true); err != nil {
		return nil, nil, err
	}
	dtaID := s.corr.id(false)
	if err := writeDSS(s.conn, sqldta, dtaID, false, false); err != nil {
		return nil, nil, err
	}
	resp, err := readResponse(s.conn, s.dia, s.pkg, s.corr)
	// The open-query reply usually carries only QRYDSC triplets; the
	// richer column metadata came back with the prepare.
	desc := resp.Description
	if len(desc) == 0 {
		desc = prepResp.Description
	}
	if err != nil {
		return desc, resp.Rows, err
	}

	s.corr.cur = 1
	cmID := s.corr.id(false)
	if err := writeDSS(s.conn, packRDBCMM(), cmID, false, false); err != nil {
		return desc, resp.Rows, err
	}
	if _, err := readResponse(s.conn, s.dia, s.pkg, s.corr); err != nil {
		return desc, resp.Rows, err
	}
	return desc, resp.Rows, nil
}

// Begin starts a transaction. DRDA autocommits by default, so this is
// just "START TRANSACTION" sent as an immediate statement.
func (s *Session) Begin() error { return s.Execute("START TRANSACTION") }

// Commit commits the current transaction.
func (s *Session) Commit() error { return s.Execute("COMMIT") }

// Rollback rolls back the current transaction.
func (s *Session) Rollback() error { return s.Execute("ROLLBACK") }

// IsConnected reports whether Connect succeeded and Close hasn't run.
func (s *Session) IsConnected() bool { return s.conn != nil }

// Close sends a final RDBCMM and closes the underlying connection. It is
// safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	s.corr.cur = 1
	id := s.corr.id(false)
	writeErr := writeDSS(s.conn, packRDBCMM(), id, false, false)
	if writeErr == nil {
		readResponse(s.conn, s.dia, s.pkg, s.corr)
	}
	err := s.conn.Close()
	s.conn = nil
	_lg.Debugf("disconnected")
	if err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// SetDeadline applies a read/write deadline to the underlying connection.
// Connect sets no deadline itself: the ConnectOption timeout bounds only
// the dial.
func (s *Session) SetDeadline(t time.Time) error {
	if s.conn == nil {
		return &TransportError{Op: "deadline", Err: fmt.Errorf("not connected")}
	}
	return s.conn.SetDeadline(t)
}
