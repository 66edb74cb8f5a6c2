// Package ui provides semantic text formatting for carlock output.
//
// Formatters colorize by meaning rather than by color, and fall back to
// plain-text decoration when NO_COLOR is set or the terminal has no color
// support:
//
//	ui.Code.Sprint("carlock keygen")  // `carlock keygen` without color
//	ui.Path.Sprint("car.1.enc")
//	ui.Hex.Sprint(nonce)              // <0400000000000000> without color
//	ui.Highlight.Sprint("car")        // 'car' without color
//
// Status lines use the markers returned by Ok, Fail and Hint.
package ui
