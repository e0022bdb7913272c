// Package drda implements a client for the DRDA (Distributed Relational
// Database Architecture) wire protocol spoken by Apache Derby's network
// server and IBM Db2. It connects, authenticates (including SECMEC 9's
// Diffie-Hellman/DES exchange), executes SQL, and iterates result sets
// over a single TCP or TLS connection per Session.
package drda
