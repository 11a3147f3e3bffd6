/*
Package host provides the execution environment of the relay.

[Runtime] is a promise scheduler: it queues issued remote calls and performs
them one by one through an [Invoker], delivering results to the waiting
promises. All continuations run on the goroutine calling Step or Run, so the
relay state is never accessed concurrently and every callback runs to
completion before the next one starts.

[Directory] is the default Invoker routing calls to ledger services, relayers
and the native payer. [Wallet] is the relay's own native balance.
*/
package host
