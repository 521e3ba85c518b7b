// Package storage provides the server's embedded storage.
//
// BadgerStore is a small key-value layer over Badger v3 with background
// value-log GC, and EvalCache keeps engine analyses keyed by position on
// top of it. An empty directory opens Badger in memory.
package storage
