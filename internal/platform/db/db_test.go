package db

import "testing"

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("Open(mysql) succeeded, want error")
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer conn.Close()

	if got := conn.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}
