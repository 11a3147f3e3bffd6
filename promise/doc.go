/*
Package promise provides combinators for chains of asynchronous remote calls.

A Promise is a node of a call graph: a remote Call leaf, a sequence built
with Then or a barrier built with Join. Promises do not perform any I/O:
when started with a Scheduler, every leaf whose turn has come is handed to
the scheduler, which later delivers the remote result with Resolve.
Continuations attached with Then run synchronously inside Resolve, so a
host that resolves leaves from a single goroutine gets callbacks that always
run to completion without preemption.

Join waits for both of its sides with a separate completion flag per side,
so the dependent stage can never be triggered by one side resolving twice.
*/
package promise
