package indexer

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"hoopla/pkg/parser"
)

// PostingList is the set of documents containing one token. Iteration is
// always in ascending DocID order.
type PostingList struct {
	bm *roaring.Bitmap
}

func NewPostingList(ids ...parser.DocID) *PostingList {
	p := &PostingList{bm: roaring.New()}
	for _, id := range ids {
		p.Add(id)
	}
	return p
}

func (p *PostingList) bitmap() *roaring.Bitmap {
	if p.bm == nil {
		p.bm = roaring.New()
	}
	return p.bm
}

// Add inserts id; adding an id twice is a no-op.
func (p *PostingList) Add(id parser.DocID) {
	p.bitmap().Add(uint32(id))
}

func (p *PostingList) Contains(id parser.DocID) bool {
	if p == nil || p.bm == nil {
		return false
	}
	return p.bm.Contains(uint32(id))
}

func (p *PostingList) Len() int {
	if p == nil || p.bm == nil {
		return 0
	}
	return int(p.bm.GetCardinality())
}

func (p *PostingList) IDs() []parser.DocID {
	ids := make([]parser.DocID, 0, p.Len())
	for id := range p.All() {
		ids = append(ids, id)
	}
	return ids
}

func (p *PostingList) All() iter.Seq[parser.DocID] {
	return func(yield func(parser.DocID) bool) {
		if p == nil || p.bm == nil {
			return
		}
		p.bm.Iterate(func(x uint32) bool {
			return yield(parser.DocID(x))
		})
	}
}

func (p *PostingList) Equal(other *PostingList) bool {
	if p.Len() == 0 || other.Len() == 0 {
		return p.Len() == other.Len()
	}
	return p.bm.Equals(other.bm)
}

func (p *PostingList) GobEncode() ([]byte, error) {
	p.bitmap().RunOptimize()
	return p.bm.ToBytes()
}

func (p *PostingList) GobDecode(b []byte) error {
	bm := roaring.New()
	if err := bm.UnmarshalBinary(b); err != nil {
		return err
	}
	p.bm = bm
	return nil
}
