/*
Package ptar implements a parallel tape-archive (tar) tool: a two-pass
create path that plans an archive's layout single-threaded and then
writes it with a pool of workers seeking independently into one shared
output file, and an extractor that reads back an offset index appended
to the archive (the "trailer") to dispatch its own pool of workers.

The on-disk format is pre-POSIX.1-1988 (v7) tar plus a trailer that
standard tar readers never see, since it lives after the two mandatory
zero blocks that terminate every tar archive.

See ptar/cmd/ptar for the command-line front-end.
*/
package ptar
