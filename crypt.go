// SPDX-License-Identifier: MIT
// Copyright (c) 2026 twmodding
// Source: github.com/twmodding/pack

package pack

// Legacy index/data obfuscation, kept for reading old encrypted packs.
// These are pure functions of (value, position); the engine never writes
// encrypted output, so no encrypt counterparts exist.

// indexLengthKey is the multiplier for the position-keyed size cipher.
const indexLengthKey uint32 = 0x1509_1984

// indexPathKey is the 64-byte keystream used for index path bytes.
var indexPathKey = []byte(`w5Bq9Y0mTdHNKxkGvfZ-J3E_c4b!V1M8ROSzPiaLCy7le2WFXgQnAj6o#uUDhIrt`)

// dataKeySeed is the initial keystream word for entry payload decryption.
const dataKeySeed uint64 = 0x8FEB_2A67_40A6_920E

// decryptIndexLength decodes one position-keyed size or timestamp word.
// reverseIndex counts entries back from the end of the declared order: the
// first record is keyed with count-1 and the last with 0.
func decryptIndexLength(ciphered uint32, reverseIndex uint32) uint32 {
	return ^ciphered ^ (indexLengthKey * reverseIndex)
}

// decryptIndexPathByte decodes one path byte at position pos, keyed by the
// entry's decrypted size.
func decryptIndexPathByte(ciphered byte, sizeKey uint32, pos int) byte {
	return ciphered ^ indexPathKey[(int(sizeKey)+pos)%len(indexPathKey)]
}

// decryptIndexPath decodes path bytes until the decrypted NUL terminator
// and returns the path plus the number of ciphered bytes consumed.
func decryptIndexPath(data []byte, sizeKey uint32) (string, int, bool) {
	out := make([]byte, 0, 64)
	for i := 0; i < len(data); i++ {
		plain := decryptIndexPathByte(data[i], sizeKey, i)
		if plain == 0 {
			return string(out), i + 1, true
		}

		out = append(out, plain)
	}

	return "", 0, false
}

// decryptEntryData decodes an encrypted payload in place with the 8-byte
// evolving keystream. The trailing partial block, if any, uses the low
// bytes of the current key word.
func decryptEntryData(data []byte) {
	key := dataKeySeed
	i := 0
	for ; i+8 <= len(data); i += 8 {
		for j := 0; j < 8; j++ {
			data[i+j] ^= byte(key >> (8 * j))
		}

		key = key*0x6C07_8965 + 1
	}

	for j := 0; i+j < len(data); j++ {
		data[i+j] ^= byte(key >> (8 * j))
	}
}
