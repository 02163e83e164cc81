// Package ring provides the fixed-capacity circular buffer shared by the
// producer and the consumer pool.
//
// The buffer is a plain data structure. Synchronization is layered on top by
// package signal: a slot must be reserved through the free/filled counting
// signals and the lock must be held before Insert or Remove is called.
package ring
