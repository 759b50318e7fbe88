/*
Package domain contains the shared vocabulary of the mdpipe pipeline.

It is kept free of I/O so that every other package can depend on it.

# Key Entities

  - Configuration: the effective settings and plugin list for one run.
  - Invocation: the explicit process context (working directory, standard streams,
    TTY state, PATH lookup) handed to every component.
  - Stage: the states of the run state machine.
  - Error: a failure classified by Kind and the Stage it happened in.
  - LifecycleHooks: observability callbacks fired by the orchestrator.
*/
package domain
