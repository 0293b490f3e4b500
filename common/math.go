package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the byte size of a column-major 4x4 float32 matrix as laid out in WGSL.
const Mat4Size = 64

// Vec4Size is the byte size of a vec4f.
const Vec4Size = 16

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Float32sToBytes serializes float32 values into a new little-endian byte buffer.
//
// Parameters:
//   - data: the values to serialize
//
// Returns:
//   - []byte: 4*len(data) bytes ready for GPU upload
func Float32sToBytes(data []float32) []byte {
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// BytesToFloat32s decodes a little-endian byte buffer into float32 values. Trailing bytes that do not
// form a whole float are ignored.
//
// Parameters:
//   - data: the encoded bytes
//
// Returns:
//   - []float32: the decoded values
func BytesToFloat32s(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}

// PutMat4 writes m into dst in column-major order. dst must hold at least Mat4Size bytes.
//
// Parameters:
//   - dst: destination buffer
//   - m: the matrix to write
func PutMat4(dst []byte, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}

// Mat4Bytes serializes a matrix into a new 64-byte buffer.
func Mat4Bytes(m mgl32.Mat4) []byte {
	buf := make([]byte, Mat4Size)
	PutMat4(buf, m)
	return buf
}

// Vec4Bytes serializes a vec4 into a new 16-byte buffer.
func Vec4Bytes(v mgl32.Vec4) []byte {
	return Float32sToBytes(v[:])
}

// Vec3Bytes serializes a vec3 padded to vec4 alignment, the way WGSL lays out a vec3f followed by padding.
func Vec3Bytes(v mgl32.Vec3) []byte {
	return Vec4Bytes(v.Vec4(0))
}
