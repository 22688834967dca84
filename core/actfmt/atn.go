package actfmt

import (
	"fmt"

	"github.com/antlr4-go/antlr/v4"

	"github.com/opal-lang/lexaction/core/lexaction"
)

// ATN action type codes, as written by the ANTLR tool into serialized ATNs.
var atnTypes = map[lexaction.Kind]int{
	lexaction.KindChannel:  antlr.LexerActionTypeChannel,
	lexaction.KindCustom:   antlr.LexerActionTypeCustom,
	lexaction.KindMode:     antlr.LexerActionTypeMode,
	lexaction.KindMore:     antlr.LexerActionTypeMore,
	lexaction.KindPopMode:  antlr.LexerActionTypePopMode,
	lexaction.KindPushMode: antlr.LexerActionTypePushMode,
	lexaction.KindSkip:     antlr.LexerActionTypeSkip,
	lexaction.KindType:     antlr.LexerActionTypeType,
}

// EncodeATN returns the serialized ATN triple for a: the action type code and two
// data words. Unused data words are zero.
func EncodeATN(a lexaction.Action) (actionType, data1, data2 int) {
	actionType = atnTypes[a.Kind()]
	switch a.Kind() {
	case lexaction.KindType:
		data1 = a.TokenType()
	case lexaction.KindChannel:
		data1 = a.ChannelValue()
	case lexaction.KindMode, lexaction.KindPushMode:
		data1 = a.ModeValue()
	case lexaction.KindCustom:
		data1, data2 = a.RuleIndex(), a.ActionIndex()
	}
	return actionType, data1, data2
}

// DecodeATN builds the action described by a serialized ATN triple. Data words that
// the action type does not use are ignored.
func DecodeATN(actionType, data1, data2 int) (lexaction.Action, error) {
	switch actionType {
	case antlr.LexerActionTypeChannel:
		return lexaction.Channel(data1), nil
	case antlr.LexerActionTypeCustom:
		return lexaction.Custom(data1, data2), nil
	case antlr.LexerActionTypeMode:
		return lexaction.Mode(data1), nil
	case antlr.LexerActionTypeMore:
		return lexaction.More(), nil
	case antlr.LexerActionTypePopMode:
		return lexaction.PopMode(), nil
	case antlr.LexerActionTypePushMode:
		return lexaction.PushMode(data1), nil
	case antlr.LexerActionTypeSkip:
		return lexaction.Skip(), nil
	case antlr.LexerActionTypeType:
		return lexaction.Type(data1), nil
	default:
		return lexaction.Action{}, fmt.Errorf("unknown lexer action type %d", actionType)
	}
}
