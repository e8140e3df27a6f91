package cmd

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns guidance when the audit store cannot be opened.
// A running server holds the lock for as long as it is up.
func diagnoseDBLock(dbPath, addr string) string {
	if serverUp(addr) {
		return fmt.Sprintf("audit store %s is locked by the running server on %s\n"+
			"  → stop it first:  kill the geonovis serve process\n"+
			"  → or query it:    curl %s/api/health", dbPath, addr, baseURL(addr))
	}

	return fmt.Sprintf("audit store %s is locked by another process\n"+
		"  → find the process:  ps aux | grep 'geonovis'\n"+
		"  → kill it:           kill <PID>\n"+
		"  → then retry your command", dbPath)
}

func serverUp(addr string) bool {
	client := &http.Client{Timeout: 500 * time.Millisecond}
	resp, err := client.Get(baseURL(addr) + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
