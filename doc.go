// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
//
// Package hyxic compiles hypertext templates – literal markup text
// interspersed with interpolation holes – into replayable programs.
// Other than its sibling goxic, hyxic does not treat templates as flat
// byte sequences: while compiling it runs a small HTML tokenizer over
// the literal parts so that every hole knows whether it sits in element
// content, in an attribute value, between attributes, in a comment or
// in the body of a script or style element. The hole's value is then
// escaped or serialized with the rule that is correct for exactly that
// spot.
//
// A template is a sequence of Segments, built with Lit, Val and Bind.
// Classify turns the sequence into a Program. Classification happens
// once; a Program is immutable and may be rendered any number of
// times, also concurrently. To render one creates a Binding – the
// object that holds the values for named holes – and emits it:
//
//	prog, err := hyxic.Classify("greet", []hyxic.Segment{
//		hyxic.Lit("<p title="), hyxic.Bind("who"), hyxic.Lit(">Hi!</p>"),
//	})
//	bt := prog.NewBinding(nil)
//	bt.BindName("who", `Strunk & White`)
//	bt.Render(os.Stdout)
//
// Like in goxic, Emit methods report only the number of bytes written
// and panic with an EmitError when something goes wrong. CatchEmit and
// Binding.Render turn that back into a normal (n, error) result.
package hyxic
