// Package pools recycles scratch slices of hot loops to reduce GC
// pressure:
//
//   - Float64Pool: size-class pooling for score accumulators, one per
//     ranked query against the text index
package pools
