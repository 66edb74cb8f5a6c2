// Package logger provides leveled logging for carlock commands.
//
// Verbosity is controlled by the persistent --verbose and --debug flags:
//
//	Logger.Infof()          // Shown with --verbose or --debug
//	Logger.Debugf()         // Shown only with --debug
//	Logger.Warnf()          // Shown with --verbose or --debug
//	Logger.WarnfAlways()    // Always shown (insecure nonce mode, etc.)
//	Logger.Errorf()         // Always shown
//	Logger.ErrorfAndReturn() // Errorf, then returns the message as an error
//
// Commands build a Logger in PersistentPreRun and pass it down.
package logger
