/*

Process of compilation

Procedure Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	front ->
Variable level IR (ssa.Func) ->
	lower:
		analyze cfg, final block,
		analyze cfg, block needs, phantoms,
		analyze cfg, bind args,
		validate needs, propagate, generate ->
Bytecode (code.Procedure) ->
	interpret

*/
package compiler
