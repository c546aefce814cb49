package zergmgr

// Version is the current version of the go-zergmgr library
const Version = "0.1.0"
