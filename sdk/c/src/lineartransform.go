// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

// CreateLinearTransform registers a rows x cols matrix given in row-major
// order as length values and returns its handle. length must equal
// rows*cols.
//
//export CreateLinearTransform
func CreateLinearTransform(data *C.double, length, rows, cols C.int) C.int {
	return handle("CreateLinearTransform", func(s *session) (int, error) {
		return s.CreateLinearTransform(goFloats(data, length), int(rows), int(cols))
	})
}

// CreateDiagonalLinearTransform registers a transform from nIdx diagonals.
// Diagonal indices[i] occupies data[i*slots:(i+1)*slots].
//
//export CreateDiagonalLinearTransform
func CreateDiagonalLinearTransform(indices *C.int, nIdx C.int, data *C.double, lenData, slots C.int) C.int {
	return handle("CreateDiagonalLinearTransform", func(s *session) (int, error) {
		idx := goInts(indices, nIdx)
		values := goFloats(data, lenData)
		n := int(slots)
		if n <= 0 || len(values) != len(idx)*n {
			return -1, errDiagonalLayout(len(idx), n, len(values))
		}
		diags := make(map[int][]float64, len(idx))
		for i, d := range idx {
			diags[d] = values[i*n : (i+1)*n]
		}
		return s.CreateDiagonalLinearTransform(diags, n)
	})
}

//export ApplyLinearTransform
func ApplyLinearTransform(ct, lt C.int) C.int {
	return handle("ApplyLinearTransform", func(s *session) (int, error) {
		return s.ApplyLinearTransform(int(ct), int(lt))
	})
}

// ApplyLinearTransformPlaintext multiplies transform lt by the cleartext
// vector in and returns a malloc'ed result of outLen values.
//
//export ApplyLinearTransformPlaintext
func ApplyLinearTransformPlaintext(lt C.int, in *C.double, length C.int, outLen *C.int) *C.double {
	clearLength(outLen)
	return call("ApplyLinearTransformPlaintext", (*C.double)(nil), func(s *session) (*C.double, error) {
		out, err := s.ApplyLinearTransformPlaintext(int(lt), goFloats(in, length))
		if err != nil {
			return nil, err
		}
		return cFloats(out, outLen), nil
	})
}

//export GetLinearTransformRotationKeys
func GetLinearTransformRotationKeys(lt C.int, count *C.int) *C.int {
	clearLength(count)
	return call("GetLinearTransformRotationKeys", (*C.int)(nil), func(s *session) (*C.int, error) {
		rots, err := s.LinearTransformRotations(int(lt))
		if err != nil {
			return nil, err
		}
		return cInts(rots, count), nil
	})
}

//export GenerateLinearTransformRotationKeys
func GenerateLinearTransformRotationKeys(lt C.int) C.int {
	return run("GenerateLinearTransformRotationKeys", func(s *session) error {
		return s.GenerateLinearTransformRotationKeys(int(lt))
	})
}

//export DeleteLinearTransform
func DeleteLinearTransform(lt C.int) {
	exists(func(s *session) bool { return s.DeleteLinearTransform(int(lt)) })
}

//export LinearTransformExists
func LinearTransformExists(lt C.int) C.int {
	return exists(func(s *session) bool { return s.LinearTransformExists(int(lt)) })
}

//export GetLinearTransformCount
func GetLinearTransformCount() C.int {
	if current == nil {
		return 0
	}
	return C.int(current.LinearTransformCount())
}

//export GetLiveLinearTransforms
func GetLiveLinearTransforms(count *C.int) *C.int {
	return liveHandles("GetLiveLinearTransforms", count, (*session).LiveLinearTransforms)
}

//export SaveLinearTransform
func SaveLinearTransform(lt C.int, name *C.char) C.int {
	return run("SaveLinearTransform", func(s *session) error {
		return s.SaveLinearTransform(int(lt), C.GoString(name))
	})
}

//export LoadLinearTransform
func LoadLinearTransform(name *C.char) C.int {
	return handle("LoadLinearTransform", func(s *session) (int, error) {
		return s.LoadLinearTransform(C.GoString(name))
	})
}
