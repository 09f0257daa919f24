// Package protocol owns the advertisement wire contracts.
//
// Ownership boundary:
// - cursor: bounded sequential reads over received bytes
// - bleadv: short-range radio advertisement (full and fast profiles)
// - lanrecord: local-network service record and its text envelope
// - shared rejection taxonomy (this package)
//
// Codecs are pure. Nothing in this tree performs I/O or holds state
// between calls.
package protocol
