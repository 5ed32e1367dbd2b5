// Package pipeline provides a sequential, typed stage pipeline.
//
// A pipeline is a linear chain of stages. The root stage produces the first artifact, and every
// following stage consumes the artifact of the stage registered right before it and produces its
// own. Stages run one after the other in the calling goroutine, in registration order.
//
// The pipeline stops on the first error. The error is returned as a *StageError carrying the name
// of the failing stage, and no later stage is started. There is no retry and no resume: a failed
// run has to be started again from the root stage.
//
// Pipeline options (see the model package) observe stage registration and completion. The measure
// and drawer packages use this hook to time stages and render the executed stage graph.
package pipeline
