package main

import (
	"fmt"
	"io"

	adminconsole "shop-admin/internal/admin-console"
)

type Logger struct {
	out io.Writer
}

func (l *Logger) Info(msg string, args ...interface{}) {
	fmt.Fprintf(l.out, Green+"[INFO] "+Reset+msg+"\n", args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	fmt.Fprintf(l.out, Yellow+"[WARN] "+Reset+msg+"\n", args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(l.out, Red+"[ERROR] "+Reset+msg+"\n", args...)
}

func (l *Logger) WebSocket(msg string, args ...interface{}) {
	fmt.Fprintf(l.out, Cyan+"[WS] "+Reset+msg+"\n", args...)
}

func (l *Logger) Notice(n *adminconsole.Notice) {
	if n == nil {
		return
	}
	if n.Kind == adminconsole.NoticeSuccess {
		l.Info("%s", n.Text)
		return
	}
	if n.Err != nil {
		l.Error("%s: %v", n.Text, n.Err)
		return
	}
	l.Error("%s", n.Text)
}
