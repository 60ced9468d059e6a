// Package jumpflood renders per-pixel mesh outlines on the GPU using
// the jump flooding algorithm.
//
// A frame consists of four stages: the meshes' silhouettes are
// rasterized into a mask, boundary pixels of the mask seed a distance
// field, a logarithmic number of flood passes propagate the nearest
// seed to every pixel, and a final pass turns seed distances into
// outline colors.
//
// The root package is documentation only. Scenes are described with
// package scene, frames are recorded with package renderer, and
// recordings execute on a WebGPU device via package
// engine/wgpu_engine.
package jumpflood
