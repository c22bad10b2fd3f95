// Package employee contains the staff domain model: a base Employee and its
// two specializations, Developer and Manager.
//
// Every kind satisfies the Staff capability, which carries the derived fields
// (Email, Fullname), the display forms (GoString for developers, String for
// end users) and the raise logic. Each kind resolves its own raise rate:
//
//	e := employee.New("John", "Smith", 100_000)
//	d := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
//	m := employee.NewManager("Jono", "Smith", 150_000, d)
//
//	employee.SetSharedRaiseRate(1.06)
//	e.ApplyRaise() // 106000, follows the shared rate
//	d.ApplyRaise() // 132000, developers always use 1.10
//
// Two values are shared by every instance in the process: the construction
// counter (EmployeeCount) and the shared raise rate. Both are atomics and are
// only reset by restarting the process.
//
// Names are optional. ClearName drops both parts; afterwards Fullname and
// Email return "" and Name reports ErrNameCleared.
package employee
