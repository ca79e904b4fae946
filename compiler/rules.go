// This file is part of loxflux.
//
// Copyright 2024 The LoxFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

// precedence orders binary operators from loosest- to tightest-binding.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precBitwise               // & | ^ << >> >>>
	precEquality              // == !=
	precInstanceOf            // instanceOf
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * / %
	precUnary                 // ! - ~ typeof
	precCall                  // . () []
	precPrimary
)

type (
	prefixFn func(p *parser, canAssign bool)
	infixFn  func(p *parser, canAssign bool)
)

// rule binds a token type to its prefix/infix parse functions and the
// precedence at which the infix form binds.
type rule struct {
	prefix     prefixFn
	infix      infixFn
	precedence precedence
}

var rules map[TokenType]rule

// init fills the rule table at package initialization instead of in the
// var declaration: the parse functions it references reach rules again
// through getRule, which Go rejects as an initialization cycle in a
// package-level initializer.
func init() {
	rules = map[TokenType]rule{
		TokenLeftParen:    {prefix: (*parser).grouping, infix: (*parser).call, precedence: precCall},
		TokenLeftBracket:  {prefix: (*parser).arrayLiteral, infix: (*parser).subscript, precedence: precCall},
		TokenLeftBrace:    {prefix: (*parser).objectLiteral},
		TokenDot:          {infix: (*parser).dot, precedence: precCall},
		TokenMinus:        {prefix: (*parser).unary, infix: (*parser).binary, precedence: precTerm},
		TokenPlus:         {infix: (*parser).binary, precedence: precTerm},
		TokenSlash:        {infix: (*parser).binary, precedence: precFactor},
		TokenStar:         {infix: (*parser).binary, precedence: precFactor},
		TokenPercent:      {infix: (*parser).binary, precedence: precFactor},
		TokenBang:         {prefix: (*parser).unary},
		TokenTilde:        {prefix: (*parser).unary},
		TokenBangEqual:    {infix: (*parser).binary, precedence: precEquality},
		TokenEqualEqual:   {infix: (*parser).binary, precedence: precEquality},
		TokenGreater:      {infix: (*parser).binary, precedence: precComparison},
		TokenGreaterEqual: {infix: (*parser).binary, precedence: precComparison},
		TokenLess:         {infix: (*parser).binary, precedence: precComparison},
		TokenLessEqual:    {infix: (*parser).binary, precedence: precComparison},
		TokenAmp:          {infix: (*parser).binary, precedence: precBitwise},
		TokenPipe:         {infix: (*parser).binary, precedence: precBitwise},
		TokenCaret:        {infix: (*parser).binary, precedence: precBitwise},
		TokenShl:          {infix: (*parser).binary, precedence: precBitwise},
		TokenShr:          {infix: (*parser).binary, precedence: precBitwise},
		TokenUShr:         {infix: (*parser).binary, precedence: precBitwise},
		TokenAmpAmp:       {infix: (*parser).and, precedence: precAnd},
		TokenPipePipe:     {infix: (*parser).or, precedence: precOr},
		TokenIdentifier:   {prefix: (*parser).variable},
		TokenModuleName:   {prefix: (*parser).moduleName},
		TokenString:       {prefix: (*parser).stringLiteral},
		TokenNumber:       {prefix: (*parser).number},
		TokenAnd:          {infix: (*parser).and, precedence: precAnd},
		TokenOr:           {infix: (*parser).or, precedence: precOr},
		TokenFalse:        {prefix: (*parser).literal},
		TokenTrue:         {prefix: (*parser).literal},
		TokenNil:          {prefix: (*parser).literal},
		TokenNone:         {prefix: (*parser).literal},
		TokenThis:         {prefix: (*parser).this},
		TokenSuper:        {prefix: (*parser).super},
		TokenFun:          {prefix: (*parser).functionExpr},
		TokenLambda:       {prefix: (*parser).lambdaExpr},
		TokenTypeof:       {prefix: (*parser).unary},
		TokenInstanceOf:   {infix: (*parser).binary, precedence: precInstanceOf},
		TokenImport:       {prefix: (*parser).importExpr},
	}
}

func getRule(t TokenType) rule { return rules[t] }
