package interpreter

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

// luaResults runs src on gopher-lua and renders the returned values.
func luaResults(t *testing.T, src string) string {
	t.Helper()
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		t.Fatalf("gopher-lua %q: %v", src, err)
	}
	parts := make([]string, 0, L.GetTop())
	for idx := 1; idx <= L.GetTop(); idx++ {
		parts = append(parts, L.Get(idx).String())
	}
	return strings.Join(parts, ", ")
}

// Programs here stay inside the subset where both languages agree.
func TestAgreesWithReferenceLua(t *testing.T) {
	programs := []string{
		"local s = 0 for i = 1, 100 do s = s + i * i end return s",
		"local function fib(n) if n < 2 then return n end return fib(n - 1) + fib(n - 2) end return fib(20)",
		"return 7 % 3, -7 % 3, 7 % -3, 2 ^ 10, 10 / 4",
		"return 1 < 2, 'a' < 'b', 1 == 1.0, not nil, nil == false",
		"return '10' + 5, 1 .. '', 'x' .. 2",
		`local t = {}
for i = 1, 5 do t[i] = i * 2 end
local s = ''
for i = 1, #t do s = s .. t[i] .. ',' end
return s, #t`,
		`local n, steps = 27, 0
while n ~= 1 do
  if n % 2 == 0 then n = n / 2 else n = 3 * n + 1 end
  steps = steps + 1
end
return steps`,
		`local function counter()
  local c = 0
  return function() c = c + 1 return c end
end
local a = counter()
a() a()
return a()`,
		`local i = 0
repeat i = i + 3 until i > 10
return i`,
		`local t = { x = 1, y = { z = 'deep' } }
t.x = t.x + 41
return t.x, t.y.z, t.missing`,
		`local function swap(a, b) return b, a end
local x, y = swap(1, 2)
return x, y`,
		"local a, b, c = 1 return a, b, c",
		"return nil and 1, false or 'fallback', 0 and 'zero is true'",
	}
	for _, src := range programs {
		want := luaResults(t, src)
		got := display(runSource(t, src))
		if got != want {
			t.Fatalf("%s\nkua => %s\nlua => %s", src, got, want)
		}
	}
}
