/*
Package notify carries relay events to observers.

Events follow NEP-297 layout: every one has a standard name, a version, an
event name and a data object. The string form of an event is the JSON
representation prefixed with "EVENT_JSON:".

Event emission is fire-and-forget for the relay, sinks never return errors to
the emitting operation.

# Sinks

  - [Log] writes events to a zap logger;
  - [Memory] keeps events in memory, it's mostly useful for tests;
  - [Journal] appends events to a SQLite database;
  - [Multi] fans events out to several sinks.
*/
package notify
