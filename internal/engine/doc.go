// Package engine runs the opinion and commentary flows.
//
// ARCHITECTURAL RULE: the engine never mutates pawn snapshots. Hosts push
// snapshots and observations in; the engine pushes opinions and remarks out
// through a Sink and the EventLog.
package engine
