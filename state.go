// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

// LexState enumerates the subset of the WHATWG tokenizer states the
// classifier walks through. Exactly one state is live at any time and
// it persists across segment boundaries.
type LexState int

const (
	StData LexState = iota
	StTagOpen
	StEndTagOpen
	StTagName
	StBeforeAttrName
	StAttrName
	StAfterAttrName
	StBeforeAttrValue
	StAttrValueDouble
	StAttrValueSingle
	StAttrValueUnquoted
	StAfterAttrValueQuoted
	StSelfClosingStart
	StRawtext
	StRawtextLessThan
	StRawtextEndOpen
	StRawtextEndName
	StMarkupDeclOpen
	StCommentStart
	StCommentStartDash
	StComment
	StCommentLessThan
	StCommentLessThanBang
	StCommentLessThanBangDash
	StCommentLessThanBangDashDash
	StCommentEndDash
	StCommentEnd
	StCommentEndBang
)

var lexStateNames = map[LexState]string{
	StData:                        "Data",
	StTagOpen:                     "TagOpen",
	StEndTagOpen:                  "EndTagOpen",
	StTagName:                     "TagName",
	StBeforeAttrName:              "BeforeAttrName",
	StAttrName:                    "AttrName",
	StAfterAttrName:               "AfterAttrName",
	StBeforeAttrValue:             "BeforeAttrValue",
	StAttrValueDouble:             "AttrValueDouble",
	StAttrValueSingle:             "AttrValueSingle",
	StAttrValueUnquoted:           "AttrValueUnquoted",
	StAfterAttrValueQuoted:        "AfterAttrValueQuoted",
	StSelfClosingStart:            "SelfClosingStart",
	StRawtext:                     "Rawtext",
	StRawtextLessThan:             "RawtextLessThan",
	StRawtextEndOpen:              "RawtextEndOpen",
	StRawtextEndName:              "RawtextEndName",
	StMarkupDeclOpen:              "MarkupDeclOpen",
	StCommentStart:                "CommentStart",
	StCommentStartDash:            "CommentStartDash",
	StComment:                     "Comment",
	StCommentLessThan:             "CommentLessThan",
	StCommentLessThanBang:         "CommentLessThanBang",
	StCommentLessThanBangDash:     "CommentLessThanBangDash",
	StCommentLessThanBangDashDash: "CommentLessThanBangDashDash",
	StCommentEndDash:              "CommentEndDash",
	StCommentEnd:                  "CommentEnd",
	StCommentEndBang:              "CommentEndBang",
}

func (s LexState) String() string {
	if nm, ok := lexStateNames[s]; ok {
		return nm
	}
	return "<invalid state>"
}

// rawtextElems are the element names whose content the tokenizer reads
// as rawtext. Holes are only allowed in script and style bodies.
var rawtextElems = map[string]bool{
	"script":   true,
	"style":    true,
	"xmp":      true,
	"iframe":   true,
	"noembed":  true,
	"noframes": true,
	"noscript": true,
}

// Context is the escaping context a hole was classified into.
type Context int

const (
	CtxContent Context = iota
	CtxComment
	CtxAttrDouble
	CtxAttrSingle
	CtxAttrUnquoted
	CtxInsideTag
	CtxScript
	CtxStyle
)

var contextNames = map[Context]string{
	CtxContent:      "content",
	CtxComment:      "comment",
	CtxAttrDouble:   "attribute value",
	CtxAttrSingle:   "attribute value",
	CtxAttrUnquoted: "unquoted attribute value",
	CtxInsideTag:    "inside tag",
	CtxScript:       "script",
	CtxStyle:        "style",
}

func (c Context) String() string {
	if nm, ok := contextNames[c]; ok {
		return nm
	}
	return "<invalid context>"
}
