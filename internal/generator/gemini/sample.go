package gemini

// sampleLyrics is the local fallback: a fixed multi-stanza lyric returned when
// every provider attempt has failed. Deterministic and topic-independent — its
// only job is to guarantee the caller never gets an empty response.
const sampleLyrics = `
1. Flowing through life, chasing dreams like shadows
   Got the beat in my heart, rhythm in my soul

2. Words carry power, express what I feel inside
   Music is my language, on this lyrical ride

3. Each day a struggle, but I keep pushing forward
   Turning pain to poetry, my spirit won't be lowered

4. This is my story, written in rhymes and flow
   Standing in my truth, watching my talent grow
`
