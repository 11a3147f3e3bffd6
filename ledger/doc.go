/*
Package ledger describes external token ledgers the relay works against.

An external ledger tracks per-account token balances and requires every
account to hold a prepaid storage allocation before any balance can be
recorded for it. The package provides value types shared by the relay and
its host (StorageBalance, Bounds), well-known method names and the Service
interface implemented by ledger clients. Emulator is an in-memory Service
with the same registration rules, it is used for local runs and tests.
*/
package ledger
