package symbol

// Canonical tables. Everything below is keyed by glyph and resolved into
// typed values once, when the registry is built.

var stemTable = []struct {
	glyph, pinyin string
	element       Element
}{
	{"甲", "jia", Wood},
	{"乙", "yi", Wood},
	{"丙", "bing", Fire},
	{"丁", "ding", Fire},
	{"戊", "wu", Earth},
	{"己", "ji", Earth},
	{"庚", "geng", Metal},
	{"辛", "xin", Metal},
	{"壬", "ren", Water},
	{"癸", "gui", Water},
}

var branchTable = []struct {
	glyph, pinyin string
	element       Element
}{
	{"子", "zi", Water},
	{"丑", "chou", Earth},
	{"寅", "yin", Wood},
	{"卯", "mao", Wood},
	{"辰", "chen", Earth},
	{"巳", "si", Fire},
	{"午", "wu", Fire},
	{"未", "wei", Earth},
	{"申", "shen", Metal},
	{"酉", "you", Metal},
	{"戌", "xu", Earth},
	{"亥", "hai", Water},
}

type hiddenDef struct {
	stem   string
	weight int
}

// Main qi first. Weights follow the common 60/30/10 split.
var hiddenTable = map[string][]hiddenDef{
	"子": {{"癸", 100}},
	"丑": {{"己", 60}, {"癸", 30}, {"辛", 10}},
	"寅": {{"甲", 60}, {"丙", 30}, {"戊", 10}},
	"卯": {{"乙", 100}},
	"辰": {{"戊", 60}, {"乙", 30}, {"癸", 10}},
	"巳": {{"丙", 60}, {"庚", 30}, {"戊", 10}},
	"午": {{"丁", 70}, {"己", 30}},
	"未": {{"己", 60}, {"丁", 30}, {"乙", 10}},
	"申": {{"庚", 60}, {"壬", 30}, {"戊", 10}},
	"酉": {{"辛", 100}},
	"戌": {{"戊", 60}, {"辛", 30}, {"丁", 10}},
	"亥": {{"壬", 70}, {"甲", 30}},
}

type pairDef struct {
	a, b    string
	element Element
}

var stemCombinationTable = []pairDef{
	{"甲", "己", Earth},
	{"乙", "庚", Metal},
	{"丙", "辛", Water},
	{"丁", "壬", Wood},
	{"戊", "癸", Fire},
}

var sixHarmonyTable = []pairDef{
	{"子", "丑", Earth},
	{"寅", "亥", Wood},
	{"卯", "戌", Fire},
	{"辰", "酉", Metal},
	{"巳", "申", Water},
	{"午", "未", Earth},
}

type triadDef struct {
	members [3]string // center in the middle
	element Element
}

var sanHeTable = []triadDef{
	{[3]string{"申", "子", "辰"}, Water},
	{[3]string{"亥", "卯", "未"}, Wood},
	{[3]string{"寅", "午", "戌"}, Fire},
	{[3]string{"巳", "酉", "丑"}, Metal},
}

var sanHuiTable = []triadDef{
	{[3]string{"寅", "卯", "辰"}, Wood},
	{[3]string{"巳", "午", "未"}, Fire},
	{[3]string{"申", "酉", "戌"}, Metal},
	{[3]string{"亥", "子", "丑"}, Water},
}

var clashTable = [][2]string{
	{"子", "午"}, {"丑", "未"}, {"寅", "申"},
	{"卯", "酉"}, {"辰", "戌"}, {"巳", "亥"},
}

var harmTable = [][2]string{
	{"子", "未"}, {"丑", "午"}, {"寅", "巳"},
	{"卯", "辰"}, {"申", "亥"}, {"酉", "戌"},
}

var destructionTable = [][2]string{
	{"子", "酉"}, {"卯", "午"}, {"辰", "丑"},
	{"未", "戌"}, {"寅", "亥"}, {"巳", "申"},
}

var punishmentTriadTable = [][3]string{
	{"寅", "巳", "申"},
	{"丑", "戌", "未"},
}

// Pair punishments outside the triads, including self-punishment.
var punishmentPairTable = [][2]string{
	{"子", "卯"},
	{"辰", "辰"}, {"午", "午"}, {"酉", "酉"}, {"亥", "亥"},
}
