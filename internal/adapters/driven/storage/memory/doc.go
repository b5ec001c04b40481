// Package memory provides in-process implementations of driven ports.
//
// The vector store is a brute-force cosine scan suited to tests and small
// indexes. The session store expires idle sessions via go-cache.
package memory
