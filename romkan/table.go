package romkan

// DefaultTable is the built-in rōmaji → hiragana mapping. User entries
// overlay it at build time; longer keys always win during rewriting.
//
// Sokuon (small tsu) entries for doubled consonants are derived
// programmatically in NewConverter, so "tta" → "った" does not need to be
// spelled out here.
var DefaultTable = map[string]string{
	"a": "あ", "i": "い", "u": "う", "e": "え", "o": "お",

	"ka": "か", "ki": "き", "ku": "く", "ke": "け", "ko": "こ",
	"kya": "きゃ", "kyi": "きぃ", "kyu": "きゅ", "kye": "きぇ", "kyo": "きょ",

	"ga": "が", "gi": "ぎ", "gu": "ぐ", "ge": "げ", "go": "ご",
	"gya": "ぎゃ", "gyu": "ぎゅ", "gyo": "ぎょ",

	"sa": "さ", "si": "し", "su": "す", "se": "せ", "so": "そ",
	"sha": "しゃ", "shi": "し", "shu": "しゅ", "she": "しぇ", "sho": "しょ",
	"sya": "しゃ", "syu": "しゅ", "syo": "しょ",

	"za": "ざ", "zi": "じ", "zu": "ず", "ze": "ぜ", "zo": "ぞ",
	"ja": "じゃ", "ji": "じ", "ju": "じゅ", "je": "じぇ", "jo": "じょ",
	"jya": "じゃ", "jyu": "じゅ", "jyo": "じょ",
	"zya": "じゃ", "zyu": "じゅ", "zyo": "じょ",

	"ta": "た", "ti": "ち", "tu": "つ", "te": "て", "to": "と",
	"chi": "ち", "tsu": "つ",
	"cha": "ちゃ", "chu": "ちゅ", "che": "ちぇ", "cho": "ちょ",
	"tya": "ちゃ", "tyu": "ちゅ", "tyo": "ちょ",
	"thi": "てぃ", "dhi": "でぃ", "dhu": "でゅ",

	"da": "だ", "di": "ぢ", "du": "づ", "de": "で", "do": "ど",
	"dya": "ぢゃ", "dyu": "ぢゅ", "dyo": "ぢょ",

	"na": "な", "ni": "に", "nu": "ぬ", "ne": "ね", "no": "の",
	"nya": "にゃ", "nyu": "にゅ", "nyo": "にょ",

	"ha": "は", "hi": "ひ", "hu": "ふ", "he": "へ", "ho": "ほ",
	"fu": "ふ", "fa": "ふぁ", "fi": "ふぃ", "fe": "ふぇ", "fo": "ふぉ",
	"hya": "ひゃ", "hyu": "ひゅ", "hyo": "ひょ",

	"ba": "ば", "bi": "び", "bu": "ぶ", "be": "べ", "bo": "ぼ",
	"bya": "びゃ", "byu": "びゅ", "byo": "びょ",

	"pa": "ぱ", "pi": "ぴ", "pu": "ぷ", "pe": "ぺ", "po": "ぽ",
	"pya": "ぴゃ", "pyu": "ぴゅ", "pyo": "ぴょ",

	"ma": "ま", "mi": "み", "mu": "む", "me": "め", "mo": "も",
	"mya": "みゃ", "myu": "みゅ", "myo": "みょ",

	"ya": "や", "yu": "ゆ", "yo": "よ",

	"ra": "ら", "ri": "り", "ru": "る", "re": "れ", "ro": "ろ",
	"rya": "りゃ", "ryu": "りゅ", "ryo": "りょ",

	"wa": "わ", "wi": "うぃ", "we": "うぇ", "wo": "を",

	"va": "ゔぁ", "vi": "ゔぃ", "vu": "ゔ", "ve": "ゔぇ", "vo": "ゔぉ",

	"xa": "ぁ", "xi": "ぃ", "xu": "ぅ", "xe": "ぇ", "xo": "ぉ",
	"xya": "ゃ", "xyu": "ゅ", "xyo": "ょ",
	"xtu": "っ", "xtsu": "っ", "xwa": "ゎ",
	"xke": "ヶ", "xka": "ヵ",

	"n": "ん", "n'": "ん", "nn": "ん",

	"-": "ー", "[": "「", "]": "」", ".": "。", ",": "、", "/": "・",
	"z,": "‥", "z.": "…", "z/": "・", "z[": "『", "z]": "』",
	"z-": "〜", "zh": "←", "zj": "↓", "zk": "↑", "zl": "→",
}

// sokuonLeads are the consonants whose doubled form produces a small tsu.
// 'n' is excluded: "nn" is the syllabic ん, not a sokuon.
const sokuonLeads = "bcdfghjkmpqrstvwxyz"
