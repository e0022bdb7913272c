package drda

import (
	"net"
	"testing"
	"time"
)

// drainBatch reads and discards DSS frames until an unchained one is
// seen, the server side of the same chained-batch convention readResponse
// drives from the client side.
func drainBatch(conn net.Conn) error {
	for {
		hdr, err := readDSSHeader(conn)
		if err != nil {
			return err
		}
		if _, err := readDSSObject(conn); err != nil {
			return err
		}
		if !hdr.chained {
			return nil
		}
	}
}

// sendReply writes objs as one DSS batch, chaining every object but the
// last, mirroring writeDSS's own grouping convention.
func sendReply(conn net.Conn, objs ...[]byte) error {
	for i, o := range objs {
		last := i == len(objs)-1
		if err := writeDSS(conn, o, 1, !last, !last); err != nil {
			return err
		}
	}
	return nil
}

// runFakeDerbyServer plays the server side of handshake, setVariables and a
// single no-args Execute against the Derby dialect (Connect itself skips
// setVariables for Derby): EXCSAT/ACCSEC/SECCHK+ACCRDB handshake,
// the SET CLIENT/SET CURRENT LOCALE session-variable batch, then one
// EXCSQLIMM+SQLSTT+RDBCMM batch. Every reply is a minimal but structurally
// valid object, enough to drive the session's control flow without a live
// Derby server.
func runFakeDerbyServer(conn net.Conn) error {
	sqlcardOK := packObject(cpSQLCARD, buildSQLCARD(&derbyDialect, 0, "00000", ""))

	// EXCSAT + ACCSEC arrive as one chained batch; reply with EXCSATRD
	// chained to ACCSECRD the same way.
	if err := drainBatch(conn); err != nil {
		return err
	}
	accsecrd := packObject(cpACCSECRD, packObject(cpSECMEC, []byte{0x00, byte(secmecUSRIDONL)}))
	if err := sendReply(conn, packObject(cpEXCSATRD, nil), accsecrd); err != nil {
		return err
	}

	// SECCHK + ACCRDB
	if err := drainBatch(conn); err != nil {
		return err
	}
	if err := sendReply(conn, packObject(cpACCRDBRM, nil)); err != nil {
		return err
	}

	// setVariables: EXCSAT/CCSIDMGR, EXCSQLSET, 2x SQLSTT, RDBCMM
	if err := drainBatch(conn); err != nil {
		return err
	}
	if err := sendReply(conn, sqlcardOK); err != nil {
		return err
	}

	// Execute: EXCSQLIMM + SQLSTT + RDBCMM, all one batch
	if err := drainBatch(conn); err != nil {
		return err
	}
	return sendReply(conn, sqlcardOK)
}

// TestSession_DerbyHandshakeAndExecute exercises Connect's handshake and a
// no-args Execute over net.Pipe against runFakeDerbyServer, covering the
// Derby DDL+DML flow without a reachable Derby server.
func TestSession_DerbyHandshakeAndExecute(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	serverErrCh := make(chan error, 1)
	go func() { serverErrCh <- runFakeDerbyServer(server) }()

	opt := NewConnectOption("ignored-in-this-test", "testdb;create=true")
	s := &Session{
		conn: client,
		dia:  &derbyDialect,
		opt:  opt,
		corr: &correlationTracker{cur: 1},
	}

	client.SetDeadline(time.Now().Add(5 * time.Second))

	dbName := padDatabaseName(opt.database)
	if err := s.handshake(dbName); err != nil {
		t.Fatalf("handshake() error = %v", err)
	}
	s.pkg = pkgContext{database: dbName, pkgid: s.dia.pkgid, pkgcnstkn: s.dia.pkgcnstkn, pkgsn: s.dia.pkgsn}
	if err := s.setVariables(); err != nil {
		t.Fatalf("setVariables() error = %v", err)
	}

	if err := s.Execute("INSERT INTO greeting (id, message) VALUES (1, 'hello')"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if err := <-serverErrCh; err != nil {
		t.Fatalf("fake server error = %v", err)
	}
}

// recordBatch reads DSS frames until an unchained one is seen, returning
// the correlation id of every frame observed in wire order. It is
// drainBatch plus bookkeeping, used to pin down the exact id sequence a
// batch sends instead of just checking that it eventually terminates.
func recordBatch(conn net.Conn) ([]uint16, error) {
	var ids []uint16
	for {
		hdr, err := readDSSHeader(conn)
		if err != nil {
			return ids, err
		}
		if _, err := readDSSObject(conn); err != nil {
			return ids, err
		}
		ids = append(ids, hdr.correlationID)
		if !hdr.chained {
			return ids, nil
		}
	}
}

// TestSession_SetVariables_CorrelationIDSequence pins down the exact
// wire-level correlation ids setVariables sends: EXCSAT_MGRLVLLS gets its
// own id, EXCSQLSET and the two SET statements share one id with each
// other, and RDBCMM gets a fresh one.
func TestSession_SetVariables_CorrelationIDSequence(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	idsCh := make(chan []uint16, 1)
	errCh := make(chan error, 1)
	go func() {
		ids, err := recordBatch(server)
		idsCh <- ids
		if err != nil {
			errCh <- err
			return
		}
		errCh <- sendReply(server, packObject(cpSQLCARD, buildSQLCARD(&derbyDialect, 0, "00000", "")))
	}()

	s := &Session{
		conn: client,
		dia:  &derbyDialect,
		opt:  NewConnectOption("h", "testdb"),
		corr: &correlationTracker{cur: 1},
		pkg:  pkgContext{database: "testdb            ", pkgid: derbyDialect.pkgid, pkgcnstkn: derbyDialect.pkgcnstkn, pkgsn: derbyDialect.pkgsn},
	}
	client.SetDeadline(time.Now().Add(5 * time.Second))

	if err := s.setVariables(); err != nil {
		t.Fatalf("setVariables() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("fake server error = %v", err)
	}

	want := []uint16{1, 2, 2, 2, 3}
	got := <-idsCh
	if len(got) != len(want) {
		t.Fatalf("len(ids) = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d (full sequence %v)", i, got[i], want[i], got)
		}
	}
}

// TestSession_Execute_NoArgsCorrelationIDSequence pins down Execute's
// no-args batch: EXCSQLIMM and SQLSTT share an id, RDBCMM gets the next
// one, all sent as a single chained batch with one reply.
func TestSession_Execute_NoArgsCorrelationIDSequence(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	idsCh := make(chan []uint16, 1)
	errCh := make(chan error, 1)
	go func() {
		ids, err := recordBatch(server)
		idsCh <- ids
		if err != nil {
			errCh <- err
			return
		}
		errCh <- sendReply(server, packObject(cpSQLCARD, buildSQLCARD(&derbyDialect, 0, "00000", "")))
	}()

	s := &Session{
		conn: client,
		dia:  &derbyDialect,
		opt:  NewConnectOption("h", "testdb"),
		corr: &correlationTracker{cur: 1},
		pkg:  pkgContext{database: "testdb            ", pkgid: derbyDialect.pkgid, pkgcnstkn: derbyDialect.pkgcnstkn, pkgsn: derbyDialect.pkgsn},
	}
	client.SetDeadline(time.Now().Add(5 * time.Second))

	if err := s.Execute("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("fake server error = %v", err)
	}

	want := []uint16{1, 1, 2}
	got := <-idsCh
	if len(got) != len(want) {
		t.Fatalf("len(ids) = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d (full sequence %v)", i, got[i], want[i], got)
		}
	}
}

// TestSession_Execute_ServerErrorSurfaces sends an invalid statement and
// has the fake server answer with a negative-sqlcode SQLCARD; Execute must
// drain the reply chain and surface it as an OperationalError.
func TestSession_Execute_ServerErrorSurfaces(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	errCh := make(chan error, 1)
	go func() {
		if err := drainBatch(server); err != nil {
			errCh <- err
			return
		}
		errCh <- sendReply(server, packObject(cpSQLCARD, buildSQLCARD(&derbyDialect, -204, "42704", "")))
	}()

	s := &Session{
		conn: client,
		dia:  &derbyDialect,
		opt:  NewConnectOption("h", "testdb"),
		corr: &correlationTracker{cur: 1},
		pkg:  pkgContext{database: "testdb            ", pkgid: derbyDialect.pkgid, pkgcnstkn: derbyDialect.pkgcnstkn, pkgsn: derbyDialect.pkgsn},
	}
	client.SetDeadline(time.Now().Add(5 * time.Second))

	err := s.Execute("invalid query")
	if !IsOperationalError(err) {
		t.Fatalf("Execute() error = %v, want OperationalError", err)
	}
	opErr := err.(*OperationalError)
	if opErr.SQLCode != -204 || opErr.SQLState != "42704" {
		t.Errorf("OperationalError = %+v, want SQLCode -204 and SQLState 42704", opErr)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("fake server error = %v", err)
	}
}

func TestPadDatabaseName(t *testing.T) {
	type args struct {
		name string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{"short name gets padded", args{"testdb"}, 18},
		{"name at the limit", args{"exactly_eighteen18"}, 18},
		{"name past the limit gets truncated", args{"this_database_name_is_way_too_long"}, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(padDatabaseName(tt.args.name)); got != tt.want {
				t.Errorf("len(padDatabaseName()) = %d, want %d", got, tt.want)
			}
		})
	}
}
