/*
Package resilience guards form action handlers with circuit breakers.

An action handler that talks to something outside the process (a mail relay,
a CRM, a queue) can fail repeatedly. A Breaker counts failures and, once
Trip says so, rejects calls with ErrOpen until Cooldown has passed. It then
lets Probes calls through half-open and closes again when they succeed.

# States

  - Closed: calls pass, counts reset every Interval
  - Open: calls fail fast with ErrOpen
  - Half-open: up to Probes calls pass, any failure reopens

# Usage

	handlers, breakers := resilience.GuardAll(bindings.Handlers, resilience.DefaultSettings())
	bindings.Handlers = handlers
	_ = breakers["mailer"].State()
*/
package resilience
