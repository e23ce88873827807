// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import "fmt"

// AddRotationKey makes sure a key for rotation k exists.
func (s *Session[P, C]) AddRotationKey(k int) error {
	if k%s.backend.MaxSlots() == 0 || s.backend.HasRotationKey(k) {
		return nil
	}
	if err := s.backend.GenerateRotationKey(k); err != nil {
		return fmt.Errorf("rotation key %d: %w", k, err)
	}
	return nil
}

// PowerOfTwoRotations returns ±2^i for every power of two below the slot
// count, the rotations generic slot-sum and replication code relies on.
func PowerOfTwoRotations(slots int) []int {
	var out []int
	for r := 1; r < slots; r <<= 1 {
		out = append(out, r, -r)
	}
	return out
}

// GeneratePowerOfTwoRotationKeys adds a key for every power-of-two rotation
// of the backend slot count.
func (s *Session[P, C]) GeneratePowerOfTwoRotationKeys() error {
	for _, k := range PowerOfTwoRotations(s.backend.MaxSlots()) {
		if err := s.AddRotationKey(k); err != nil {
			return err
		}
	}
	return nil
}
