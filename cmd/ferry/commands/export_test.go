package commands

// PrintReport exposes printReport to the external test package.
var PrintReport = printReport
