package reference

// voicingTable holds verified voicings keyed by canonical root, then quality.
// Frets list strings 6 through 1: x mutes a string, 0-9 are literal frets, a=10, b=11 and so on.
var voicingTable = map[string]map[string][]RawVoicing{
	"C": {
		"maj": {
			{Frets: "x32010", Name: "Open C"},
			{Frets: "x35553", Barre: 3, Name: "A Shape"},
			{Frets: "xx5558", Barre: 5, Name: "Partial"},
			{Frets: "8aa988", Barre: 8, Name: "E Shape"},
		},
		"m": {
			{Frets: "x31013", Name: "Open Cm"},
			{Frets: "335543", Barre: 3, Name: "Am Shape"},
			{Frets: "8655xx", Name: "Partial"},
			{Frets: "8aa888", Barre: 8, Name: "Em Shape"},
		},
		"7": {
			{Frets: "x32310", Name: "Open C7"},
			{Frets: "x35353", Barre: 3, Name: "A7 Shape"},
			{Frets: "xx5556", Barre: 5, Name: "Partial"},
			{Frets: "8a8988", Barre: 8, Name: "E7 Shape"},
		},
		"m7": {
			{Frets: "8x888x", Barre: 8, Name: "Em7 Shape"},
			{Frets: "x3134x", Name: "Am7 Shape"},
			{Frets: "335343", Barre: 3, Name: "Barre"},
			{Frets: "xx5546", Name: "Partial"},
			{Frets: "8a8888", Barre: 8, Name: "Full Barre"},
		},
		"maj7": {
			{Frets: "332000", Name: "Open Cmaj7"},
			{Frets: "335453", Barre: 3, Name: "A Shape"},
			{Frets: "xx5557", Barre: 5, Name: "Partial"},
			{Frets: "xxaccc", Barre: 10, Name: "High"},
		},
	},
	"A": {
		"maj": {
			{Frets: "x02220", Name: "Open A"},
			{Frets: "x02225", Name: "Open A (alt)"},
			{Frets: "577655", Barre: 5, Name: "E Shape"},
			{Frets: "x079a9", Barre: 7, Name: "High"},
		},
		"m": {
			{Frets: "x02210", Name: "Open Am"},
			{Frets: "x02555", Barre: 2, Name: "Partial Barre"},
			{Frets: "577555", Barre: 5, Name: "Em Shape"},
			{Frets: "x079a8", Barre: 7, Name: "High"},
		},
		"7": {
			{Frets: "x02020", Name: "Open A7"},
			{Frets: "x02223", Barre: 2, Name: "Barre"},
			{Frets: "575655", Barre: 5, Name: "E7 Shape"},
			{Frets: "x07989", Barre: 7, Name: "High"},
		},
		"m7": {
			{Frets: "x02010", Name: "Open Am7"},
			{Frets: "x02213", Name: "Open Am7 (alt)"},
			{Frets: "5x555x", Barre: 5, Name: "Shell"},
			{Frets: "x05555", Barre: 5, Name: "Barre"},
			{Frets: "575555", Barre: 5, Name: "Full Barre"},
			{Frets: "x77988", Barre: 7, Name: "High"},
		},
		"maj7": {
			{Frets: "x02120", Name: "Open Amaj7"},
			{Frets: "x02224", Barre: 2, Name: "Barre"},
			{Frets: "576655", Barre: 5, Name: "E Shape"},
			{Frets: "x07999", Barre: 7, Name: "High"},
		},
	},
	"E": {
		"maj": {
			{Frets: "022100", Name: "Open E"},
			{Frets: "xx2454", Name: "Partial"},
			{Frets: "x76454", Barre: 4, Name: "A Shape"},
			{Frets: "x79997", Barre: 7, Name: "High"},
		},
		"m": {
			{Frets: "022000", Name: "Open Em"},
			{Frets: "022453", Barre: 2, Name: "Partial"},
			{Frets: "x79987", Barre: 7, Name: "Am Shape"},
			{Frets: "ca99xx", Barre: 9, Name: "High"},
		},
		"7": {
			{Frets: "020100", Name: "Open E7"},
			{Frets: "x7675x", Barre: 5, Name: "Partial"},
			{Frets: "779797", Barre: 7, Name: "Barre"},
			{Frets: "xx999a", Barre: 9, Name: "High"},
		},
		"m7": {
			{Frets: "020000", Name: "Open Em7"},
			{Frets: "022030", Name: "Open Em7 (alt)"},
			{Frets: "0x000x", Name: "Shell"},
			{Frets: "022433", Barre: 2, Name: "Partial"},
			{Frets: "779787", Barre: 7, Name: "Barre"},
			{Frets: "xx998a", Barre: 9, Name: "High"},
		},
		"maj7": {
			{Frets: "021100", Name: "Open Emaj7"},
			{Frets: "xx2444", Barre: 2, Name: "Partial"},
			{Frets: "x76444", Barre: 4, Name: "A Shape"},
			{Frets: "779897", Barre: 7, Name: "Barre"},
		},
	},
	"G": {
		"maj": {
			{Frets: "320003", Name: "Open G"},
			{Frets: "355433", Barre: 3, Name: "E Shape"},
			{Frets: "xx5787", Name: "Partial"},
			{Frets: "7a9787", Barre: 7, Name: "High"},
		},
		"m": {
			{Frets: "310033", Name: "Open Gm"},
			{Frets: "355333", Barre: 3, Name: "Em Shape"},
			{Frets: "xx5786", Name: "Partial"},
			{Frets: "aaccba", Barre: 10, Name: "High"},
		},
		"7": {
			{Frets: "320001", Name: "Open G7"},
			{Frets: "353433", Barre: 3, Name: "E7 Shape"},
			{Frets: "x55767", Barre: 5, Name: "A7 Shape"},
			{Frets: "aacaca", Barre: 10, Name: "High"},
		},
		"m7": {
			{Frets: "3x333x", Barre: 3, Name: "Shell"},
			{Frets: "353333", Barre: 3, Name: "Em7 Shape"},
			{Frets: "x55766", Barre: 5, Name: "Am7 Shape"},
			{Frets: "xa8a8a", Barre: 8, Name: "Partial"},
			{Frets: "aacaba", Barre: 10, Name: "High"},
		},
		"maj7": {
			{Frets: "320002", Name: "Open Gmaj7"},
			{Frets: "354433", Barre: 3, Name: "E Shape"},
			{Frets: "x55777", Barre: 5, Name: "A Shape"},
			{Frets: "xacbca", Barre: 10, Name: "High"},
		},
	},
	"D": {
		"maj": {
			{Frets: "xx0232", Name: "Open D"},
			{Frets: "x54232", Barre: 2, Name: "Partial"},
			{Frets: "x57775", Barre: 5, Name: "A Shape"},
			{Frets: "accbaa", Barre: 10, Name: "E Shape"},
		},
		"m": {
			{Frets: "xx0231", Name: "Open Dm"},
			{Frets: "557765", Barre: 5, Name: "Am Shape"},
			{Frets: "x8776x", Barre: 6, Name: "Partial"},
			{Frets: "accaaa", Barre: 10, Name: "Em Shape"},
		},
		"7": {
			{Frets: "xx0212", Name: "Open D7"},
			{Frets: "x5453x", Barre: 3, Name: "Partial"},
			{Frets: "557575", Barre: 5, Name: "A7 Shape"},
			{Frets: "acabaa", Barre: 10, Name: "E7 Shape"},
		},
		"m7": {
			{Frets: "xx0211", Name: "Open Dm7"},
			{Frets: "x57565", Barre: 5, Name: "Am7 Shape"},
			{Frets: "xx7768", Barre: 7, Name: "Partial"},
			{Frets: "acaaaa", Barre: 10, Name: "Em7 Shape"},
		},
		"maj7": {
			{Frets: "xx0222", Name: "Open Dmaj7"},
			{Frets: "x54222", Barre: 2, Name: "Partial"},
			{Frets: "557675", Barre: 5, Name: "A Shape"},
			{Frets: "xx7779", Barre: 7, Name: "High"},
		},
	},
	"F": {
		"maj": {
			{Frets: "133211", Barre: 1, Name: "F Barre"},
			{Frets: "xx3211", Name: "Partial F"},
			{Frets: "xx3565", Barre: 3, Name: "A Shape Partial"},
			{Frets: "x87565", Barre: 5, Name: "High"},
			{Frets: "x8aaa8", Barre: 8, Name: "Full High"},
		},
		"m": {
			{Frets: "133111", Barre: 1, Name: "Fm Barre"},
			{Frets: "xx3564", Barre: 3, Name: "Partial"},
			{Frets: "x8aa98", Barre: 8, Name: "Am Shape"},
			{Frets: "dbaaxx", Barre: 10, Name: "High"},
		},
		"7": {
			{Frets: "131211", Barre: 1, Name: "F7 Barre"},
			{Frets: "x33545", Barre: 3, Name: "A7 Shape"},
			{Frets: "88a8a8", Barre: 8, Name: "E7 Shape"},
			{Frets: "xxaaab", Barre: 10, Name: "High"},
		},
		"m7": {
			{Frets: "131111", Barre: 1, Name: "Fm7 Barre"},
			{Frets: "1x111x", Barre: 1, Name: "Shell"},
			{Frets: "xx3544", Barre: 3, Name: "Partial"},
			{Frets: "88a898", Barre: 8, Name: "Am7 Shape"},
			{Frets: "xxaa9b", Barre: 10, Name: "High"},
		},
		"maj7": {
			{Frets: "xx3210", Name: "Partial Fmaj7"},
			{Frets: "132211", Barre: 1, Name: "Fmaj7 Barre"},
			{Frets: "x33555", Barre: 3, Name: "A Shape"},
			{Frets: "88a9a8", Barre: 8, Name: "E Shape"},
		},
	},
	"B": {
		"maj": {
			{Frets: "224442", Barre: 2, Name: "A Shape"},
			{Frets: "xx4447", Barre: 4, Name: "Partial"},
			{Frets: "799877", Barre: 7, Name: "E Shape"},
			{Frets: "x99bcb", Barre: 9, Name: "High"},
		},
		"m": {
			{Frets: "224432", Barre: 2, Name: "Am Shape"},
			{Frets: "799777", Barre: 7, Name: "Em Shape"},
			{Frets: "xx9bca", Barre: 9, Name: "Partial"},
			{Frets: "xxcbca", Barre: 11, Name: "High"},
		},
		"7": {
			{Frets: "x21202", Name: "Open B7"},
			{Frets: "224242", Barre: 2, Name: "A7 Shape"},
			{Frets: "797877", Barre: 7, Name: "E7 Shape"},
		},
		"m7": {
			{Frets: "x20202", Name: "Open Bm7"},
			{Frets: "224232", Barre: 2, Name: "Am7 Shape"},
			{Frets: "797777", Barre: 7, Name: "Em7 Shape"},
		},
		"maj7": {
			{Frets: "x24342", Barre: 2, Name: "Amaj7 Shape"},
			{Frets: "798877", Barre: 7, Name: "Emaj7 Shape"},
		},
	},
	"Bb": {
		"maj": {
			{Frets: "x13331", Barre: 1, Name: "A Shape"},
			{Frets: "65333x", Barre: 3, Name: "Partial"},
			{Frets: "688766", Barre: 6, Name: "E Shape"},
			{Frets: "x88aba", Barre: 8, Name: "High"},
		},
		"m": {
			{Frets: "x13321", Barre: 1, Name: "Am Shape"},
			{Frets: "688666", Barre: 6, Name: "Em Shape"},
		},
		"7": {
			{Frets: "x13131", Barre: 1, Name: "A7 Shape"},
			{Frets: "686766", Barre: 6, Name: "E7 Shape"},
		},
		"m7": {
			{Frets: "x13121", Barre: 1, Name: "Am7 Shape"},
			{Frets: "686666", Barre: 6, Name: "Em7 Shape"},
		},
		"maj7": {
			{Frets: "x13231", Barre: 1, Name: "Amaj7 Shape"},
			{Frets: "687766", Barre: 6, Name: "Emaj7 Shape"},
		},
	},
	"Eb": {
		"maj": {
			{Frets: "x68886", Barre: 6, Name: "A Shape"},
			{Frets: "x65343", Name: "Partial"},
			{Frets: "bddcbb", Barre: 11, Name: "E Shape"},
		},
		"m": {
			{Frets: "x68876", Barre: 6, Name: "Am Shape"},
			{Frets: "bddbbb", Barre: 11, Name: "Em Shape"},
		},
		"7": {
			{Frets: "x68686", Barre: 6, Name: "A7 Shape"},
		},
		"m7": {
			{Frets: "x68676", Barre: 6, Name: "Am7 Shape"},
		},
		"maj7": {
			{Frets: "x68786", Barre: 6, Name: "Amaj7 Shape"},
		},
	},
	"Ab": {
		"maj": {
			{Frets: "466544", Barre: 4, Name: "E Shape"},
			{Frets: "xbdddb", Barre: 11, Name: "A Shape"},
		},
		"m": {
			{Frets: "466444", Barre: 4, Name: "Em Shape"},
			{Frets: "xbddcb", Barre: 11, Name: "Am Shape"},
		},
		"7": {
			{Frets: "464544", Barre: 4, Name: "E7 Shape"},
			{Frets: "xbdbdb", Barre: 11, Name: "A7 Shape"},
		},
		"m7": {
			{Frets: "464444", Barre: 4, Name: "Em7 Shape"},
			{Frets: "xbdbcb", Barre: 11, Name: "Am7 Shape"},
		},
		"maj7": {
			{Frets: "465544", Barre: 4, Name: "Emaj7 Shape"},
		},
	},
	"Db": {
		"maj": {
			{Frets: "x46664", Barre: 4, Name: "A Shape"},
			{Frets: "9bba99", Barre: 9, Name: "E Shape"},
		},
		"m": {
			{Frets: "x46654", Barre: 4, Name: "Am Shape"},
			{Frets: "9bb999", Barre: 9, Name: "Em Shape"},
		},
		"7": {
			{Frets: "x46464", Barre: 4, Name: "A7 Shape"},
		},
		"m7": {
			{Frets: "x46454", Barre: 4, Name: "Am7 Shape"},
		},
		"maj7": {
			{Frets: "x46564", Barre: 4, Name: "Amaj7 Shape"},
		},
	},
	"F#": {
		"maj": {
			{Frets: "244322", Barre: 2, Name: "E Shape"},
			{Frets: "x44676", Barre: 4, Name: "A Shape"},
		},
		"m": {
			{Frets: "244222", Barre: 2, Name: "Em Shape"},
			{Frets: "x9bba9", Barre: 9, Name: "Am Shape"},
		},
		"7": {
			{Frets: "242322", Barre: 2, Name: "E7 Shape"},
		},
		"m7": {
			{Frets: "242222", Barre: 2, Name: "Em7 Shape"},
		},
		"maj7": {
			{Frets: "243322", Barre: 2, Name: "Emaj7 Shape"},
		},
	},
}
