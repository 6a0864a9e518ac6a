package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrel-chess/kestrel/pkg/common"
)

// normalizeFEN checks the board, side and clock fields of a FEN and returns
// it with the clocks filled in when they are missing (EPD style). Castling
// rights without their king and rook on the home squares are dropped, and an
// en passant square that no double push could have produced becomes "-".
func normalizeFEN(fen string) (string, int, error) {
	var fields = strings.Fields(fen)
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	}
	if len(fields) != 6 {
		return "", 0, fmt.Errorf("%w: %q: want 4 or 6 fields", common.ErrMalformedSpec, fen)
	}
	board, err := parsePlacement(fields[0])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", common.ErrMalformedSpec, fen, err)
	}
	if fields[1] != "w" && fields[1] != "b" {
		return "", 0, fmt.Errorf("%w: %q: bad side to move", common.ErrMalformedSpec, fen)
	}
	if strings.Trim(fields[2], "KQkq") != "" && fields[2] != "-" {
		return "", 0, fmt.Errorf("%w: %q: bad castling rights", common.ErrMalformedSpec, fen)
	}
	if fields[3] != "-" && !isEpSquare(fields[3]) {
		return "", 0, fmt.Errorf("%w: %q: bad en passant square", common.ErrMalformedSpec, fen)
	}
	rule50, err := strconv.Atoi(fields[4])
	if err != nil || rule50 < 0 {
		return "", 0, fmt.Errorf("%w: %q: bad halfmove clock", common.ErrMalformedSpec, fen)
	}
	if moveNumber, err := strconv.Atoi(fields[5]); err != nil || moveNumber < 1 {
		return "", 0, fmt.Errorf("%w: %q: bad move number", common.ErrMalformedSpec, fen)
	}
	fields[2] = castlingRights(&board, fields[2])
	fields[3] = enPassantSquare(&board, fields[1] == "w", fields[3])
	return strings.Join(fields, " "), rule50, nil
}

// placement holds FEN piece letters indexed a1 = 0, 0 for an empty square.
type placement [64]byte

func parsePlacement(s string) (placement, error) {
	var board placement
	var ranks = strings.Split(s, "/")
	if len(ranks) != 8 {
		return board, fmt.Errorf("want 8 ranks, got %v", len(ranks))
	}
	var kings [2]int
	for i, rank := range ranks {
		var files = 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				files += int(ch - '0')
				continue
			case !strings.ContainsRune("pnbrqkPNBRQK", ch):
				return board, fmt.Errorf("bad piece %q", ch)
			}
			if files < 8 {
				board[common.MakeSquare(files, 7-i)] = byte(ch)
			}
			files++
			if ch == 'K' {
				kings[common.White]++
			} else if ch == 'k' {
				kings[common.Black]++
			}
		}
		if files != 8 {
			return board, fmt.Errorf("rank %v has %v files", 8-i, files)
		}
	}
	if kings[common.White] != 1 || kings[common.Black] != 1 {
		return board, fmt.Errorf("want one king per side")
	}
	return board, nil
}

var castlingHomes = []struct {
	right byte
	king  int
	kingP byte
	rook  int
	rookP byte
}{
	{'K', common.SquareE1, 'K', common.SquareH1, 'R'},
	{'Q', common.SquareE1, 'K', common.SquareA1, 'R'},
	{'k', common.SquareE8, 'k', common.SquareH8, 'r'},
	{'q', common.SquareE8, 'k', common.SquareA8, 'r'},
}

func castlingRights(board *placement, rights string) string {
	var result []byte
	for _, home := range castlingHomes {
		if strings.IndexByte(rights, home.right) >= 0 &&
			board[home.king] == home.kingP &&
			board[home.rook] == home.rookP {
			result = append(result, home.right)
		}
	}
	if len(result) == 0 {
		return "-"
	}
	return string(result)
}

// enPassantSquare keeps ep only when a pawn of the side not to move stands
// in front of it and both the square and the pawn's origin are empty.
func enPassantSquare(board *placement, whiteToMove bool, ep string) string {
	if ep == "-" {
		return ep
	}
	var sq = common.MakeSquare(int(ep[0]-'a'), int(ep[1]-'1'))
	var pawnSq, originSq, rank = sq - 8, sq + 8, 5
	var pawn byte = 'p'
	if !whiteToMove {
		pawnSq, originSq, rank = sq+8, sq-8, 2
		pawn = 'P'
	}
	if common.Rank(sq) != rank ||
		board[pawnSq] != pawn ||
		board[sq] != 0 ||
		board[originSq] != 0 {
		return "-"
	}
	return ep
}

func isEpSquare(s string) bool {
	return len(s) == 2 &&
		s[0] >= 'a' && s[0] <= 'h' &&
		(s[1] == '3' || s[1] == '6')
}
