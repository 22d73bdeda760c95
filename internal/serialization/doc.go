// Package serialization saves and loads named parameter buffers.
//
// Checkpoint layout:
//
//	[4 bytes: Magic "DGRD"]
//	[4 bytes: Version (uint32 LE)]
//	[4 bytes: Flags (uint32 LE)]
//	[8 bytes: Header Size (uint64 LE)]
//	[Header: JSON metadata]
//	[32 bytes: SHA-256 of the data section]
//	[Tensor data: float64 LE, tensors in header order]
//
// Example usage:
//
//	// Save
//	err := serialization.SaveFile("xor.dgrd", model.StateDict(), serialization.Header{ModelType: "XORNet"})
//
//	// Load
//	stateDict, header, err := serialization.LoadFile("xor.dgrd")
//	err = model.LoadStateDict(stateDict)
package serialization
