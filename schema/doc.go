// Package schema describes the layout of IFSF messages.
//
// A MessageDescriptor pairs a 4-digit MTI with its FieldDescriptors in wire
// order. Each field has a number, a format.Kind and a width, and may nest a
// CompositeDescriptor. A composite is either bitmap-gated sub-fields (the DE48
// style) or a delimited repeating group (the DE63 style): header fields
// followed by items built from an ItemTemplate.
//
// Descriptors are validated once, usually at package init, and are immutable
// afterwards. They can be shared between goroutines without locking.
//
// Example:
//
//	msg := schema.MustNewMessage("1800", "NetworkManagementRequest",
//	    schema.NewField(7, "TransmissionTime", format.ShortTimestamp, 10),
//	    schema.NewField(11, "STAN", format.FixedNumeric, 6),
//	    schema.NewField(24, "FunctionCode", format.FixedNumeric, 3),
//	    schema.NewField(32, "AcquirerID", format.LLVar, 99),
//	)
package schema
