// Package msgtemplate handles the message templates used by the logging
// aspect.
//
// A template is free text that may contain the placeholders {AssemblyName},
// {ClassName} and {MethodName} in any order. Structured loggers substitute
// arguments positionally, so the three identity values must be supplied in the
// order their placeholders appear. Resolver computes that order once per
// template and caches it for the life of the process.
//
// Format renders a template positionally the same way a structured logger does.
package msgtemplate
