package domain

import "testing"

func TestThreadAccessMatrix(t *testing.T) {
	cases := []struct {
		role   Role
		thread Thread
		want   bool
	}{
		{RoleCitizen, ThreadAll, true},
		{RoleCitizen, ThreadRA, true},
		{RoleCitizen, ThreadAA, false},
		{RoleCitizen, ThreadInternal, false},
		{RoleAuthority, ThreadAll, true},
		{RoleAuthority, ThreadRA, false},
		{RoleAuthority, ThreadAA, true},
		{RoleAuthority, ThreadInternal, true},
		{RoleAnalyst, ThreadAll, true},
		{RoleAnalyst, ThreadRA, true},
		{RoleAnalyst, ThreadAA, true},
		{RoleAnalyst, ThreadInternal, true},
		{RoleAdmin, ThreadAll, true},
		{RoleAdmin, ThreadRA, true},
		{RoleAdmin, ThreadAA, true},
		{RoleAdmin, ThreadInternal, true},
		{RoleSystem, ThreadAll, false},
	}
	for _, tc := range cases {
		if got := CanAccessThread(tc.role, tc.thread); got != tc.want {
			t.Errorf("CanAccessThread(%s, %s) = %v, want %v", tc.role, tc.thread, got, tc.want)
		}
	}
}

func TestAllowedThreadsReturnsCopy(t *testing.T) {
	threads := AllowedThreads(RoleCitizen)
	if len(threads) != 2 {
		t.Fatalf("citizen should see two threads, got %v", threads)
	}
	threads[0] = ThreadInternal
	if CanAccessThread(RoleCitizen, ThreadInternal) {
		t.Fatal("mutating the returned slice must not affect the access table")
	}
}

func TestValidThread(t *testing.T) {
	for _, thread := range []Thread{ThreadAll, ThreadRA, ThreadAA, ThreadInternal} {
		if !ValidThread(thread) {
			t.Errorf("%s should be valid", thread)
		}
	}
	if ValidThread(Thread("dm")) {
		t.Error("unknown thread accepted")
	}
}

func TestRoleIsStaff(t *testing.T) {
	for role, want := range map[Role]bool{
		RoleCitizen:   false,
		RoleAnalyst:   true,
		RoleAuthority: true,
		RoleAdmin:     true,
		RoleSystem:    false,
	} {
		if got := role.IsStaff(); got != want {
			t.Errorf("IsStaff(%s) = %v, want %v", role, got, want)
		}
	}
}
