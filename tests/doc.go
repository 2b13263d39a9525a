// Package tests holds cross-primitive integration scenarios that exercise
// asyncobjects, queue, and operation together rather than one type in
// isolation — timing-sensitive behavior (release points, barrier ordering,
// future combinator ordering) that unit tests on a single type would not
// catch.
package tests
