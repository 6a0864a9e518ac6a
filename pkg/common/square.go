package common

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

const (
	SquareA1 = 0
	SquareE1 = 4
	SquareH1 = 7
	SquareA8 = 56
	SquareE8 = 60
	SquareH8 = 63
)

func FlipSquare(sq int) int {
	return sq ^ 56
}

func File(sq int) int {
	return sq & 7
}

func Rank(sq int) int {
	return sq >> 3
}

func IsDarkSquare(sq int) bool {
	return (File(sq) & 1) == (Rank(sq) & 1)
}

func MakeSquare(file, rank int) int {
	return (rank << 3) | file
}

const (
	fileNames = "abcdefgh"
	rankNames = "12345678"
)

func SquareName(sq int) string {
	var file = fileNames[File(sq)]
	var rank = rankNames[Rank(sq)]
	return string(file) + string(rank)
}

func SquareMask(sq int) uint64 {
	return uint64(1) << uint(sq)
}

func PopCount(b uint64) int {
	return bits.OnesCount64(b)
}

func FirstOne(b uint64) int {
	return bits.TrailingZeros64(b)
}

func Min[T constraints.Ordered](l, r T) T {
	if l < r {
		return l
	}
	return r
}

func Max[T constraints.Ordered](l, r T) T {
	if l > r {
		return l
	}
	return r
}
