package coursestream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamsForDefaults(t *testing.T) {
	m := New()

	tests := []struct {
		course string
		want   []Stream
	}{
		{"BDS", []Stream{Dental}},
		{"MDS ORTHODONTICS", []Stream{Dental}},
		{"MBBS", []Stream{Medical}},
		{"MD GENERAL MEDICINE", []Stream{Medical}},
		{"DNB-GENERAL MEDICINE", []Stream{DNB, Medical}},
		{"SOME UNKNOWN COURSE", []Stream{Medical, Dental, DNB}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.StreamsFor(tt.course), tt.course)
	}
}

func TestSetOverridesReplacesTable(t *testing.T) {
	m := New()
	m.SetOverrides([]Override{
		{Contains: []string{"AYUSH"}, Streams: []string{"MEDICAL"}},
	})
	assert.Equal(t, []Stream{Medical}, m.StreamsFor("BAMS AYUSH"))
	assert.Equal(t, []Stream{Medical, Dental, DNB}, m.StreamsFor("BDS"))
}
