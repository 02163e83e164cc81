// Package pipeline implements the producer and consumer tasks that move
// process records through the bounded buffer.
//
// A Producer makes exactly one pass over a procs.Source and inserts every
// record owned by the target uid. Consumers loop, removing records in FIFO
// order and adding their elapsed running time to the shared Stats.
// Both block on the signals in Shared.Triple and give up as soon as a wait
// is interrupted; the lifecycle package owns starting and stopping them.
package pipeline
