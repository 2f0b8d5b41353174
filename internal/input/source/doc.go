// Package source provides key event sources that feed a combo engine.
//
// Every source delivers raw key-down and key-up events through OnKeyDown and
// OnKeyUp, and announces lost key-up state through OnReset:
//
//   - Emitter: programmatic source, also embedded by the others
//   - Terminal: tcell screen; each terminal key event is expanded into
//     presses of its modifiers and key followed by releases in reverse
//   - Script: replays a line-oriented press/release script
package source
